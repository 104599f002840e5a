package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/felipeandrian/navfep-gopher/internal/database"
	"github.com/felipeandrian/navfep-gopher/internal/model"
)

func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "compare [gopher-url]" {
			t.Errorf("unexpected Use: got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty Short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty Long description")
		}
	})

	t.Run("accepts maximum 1 argument", func(t *testing.T) {
		t.Parallel()
		// cobra.MaximumNArgs(1) is used
		if cmd.Args == nil {
			t.Error("expected Args to be set")
		}
	})

	t.Run("has expected flags with shorthands", func(t *testing.T) {
		t.Parallel()
		flagsWithShort := map[string]string{
			"list":         "l",
			"list-targets": "L",
			"since":        "s",
			"json":         "j",
			"markdown":     "m",
		}
		for flag, shorthand := range flagsWithShort {
			f := cmd.Flags().Lookup(flag)
			if f == nil {
				t.Errorf("expected flag %q to exist", flag)
				continue
			}
			if f.Shorthand != shorthand {
				t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
			}
		}
	})

	t.Run("has no db-dir flag", func(t *testing.T) {
		t.Parallel()
		// The database always lives in the XDG data directory
		if cmd.Flags().Lookup("db-dir") != nil {
			t.Error("db-dir flag should not exist")
		}
	})
}

func TestParseCompareTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		target   string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{
			name:     "bare host defaults to port 70",
			target:   "gopher.example.org",
			wantHost: "gopher.example.org",
			wantPort: 70,
		},
		{
			name:     "bare host with port",
			target:   "gopher.example.org:7071",
			wantHost: "gopher.example.org",
			wantPort: 7071,
		},
		{
			name:     "full gopher URL",
			target:   "gopher://gopher.example.org/1/phlog",
			wantHost: "gopher.example.org",
			wantPort: 70,
		},
		{
			name:     "gopher URL with explicit port",
			target:   "gopher://gopher.example.org:7070",
			wantHost: "gopher.example.org",
			wantPort: 7070,
		},
		{
			name:     "mixed-case onion host folds to canonical form",
			target:   "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAM2DQD.ONION",
			wantHost: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion",
			wantPort: 70,
		},
		{
			name:     "onion URL keeps its explicit port",
			target:   "gopher://PHLOG.EXAMPLE.ONION:7070",
			wantHost: "phlog.example.onion",
			wantPort: 7070,
		},
		{
			name:    "rejects non-gopher scheme",
			target:  "http://gopher.example.org",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			addr, err := parseCompareTarget(tt.target)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCompareTarget(%q) error = %v", tt.target, err)
			}
			if addr.Host() != tt.wantHost {
				t.Errorf("Host: got %q, want %q", addr.Host(), tt.wantHost)
			}
			if addr.Port() != tt.wantPort {
				t.Errorf("Port: got %d, want %d", addr.Port(), tt.wantPort)
			}
		})
	}
}

// countSeverities fills the severity counters of a simple report from
// its findings, the same way the audit step does during a crawl.
func countSeverities(s *model.SimpleReport) {
	for _, f := range s.Findings {
		switch f.Severity {
		case model.SeverityCritical:
			s.CriticalCount++
		case model.SeverityHigh:
			s.HighCount++
		case model.SeverityMedium:
			s.MediumCount++
		case model.SeverityLow:
			s.LowCount++
		case model.SeverityInfo:
			s.InfoCount++
		}
	}
}

func TestCompareReports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		previousFindings  []model.Finding
		currentFindings   []model.Finding
		wantNewCount      int
		wantResolvedCount int
		wantUnchanged     int
		wantDirection     string
	}{
		{
			name:              "no changes when findings are identical",
			previousFindings:  []model.Finding{{Type: "email_address", Value: "admin@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM"}},
			currentFindings:   []model.Finding{{Type: "email_address", Value: "admin@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM"}},
			wantNewCount:      0,
			wantResolvedCount: 0,
			wantUnchanged:     1,
			wantDirection:     "unchanged",
		},
		{
			name:              "detects new findings",
			previousFindings:  []model.Finding{},
			currentFindings:   []model.Finding{{Type: "email_address", Value: "new@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM"}},
			wantNewCount:      1,
			wantResolvedCount: 0,
			wantUnchanged:     0,
			wantDirection:     "worsened",
		},
		{
			name:              "detects resolved findings",
			previousFindings:  []model.Finding{{Type: "email_address", Value: "old@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM"}},
			currentFindings:   []model.Finding{},
			wantNewCount:      0,
			wantResolvedCount: 1,
			wantUnchanged:     0,
			wantDirection:     "improved",
		},
		{
			name: "handles mixed changes",
			previousFindings: []model.Finding{
				{Type: "email_address", Value: "unchanged@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
				{Type: "email_address", Value: "resolved@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
			},
			currentFindings: []model.Finding{
				{Type: "email_address", Value: "unchanged@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
				{Type: "email_address", Value: "new@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
			},
			wantNewCount:      1,
			wantResolvedCount: 1,
			wantUnchanged:     1,
			wantDirection:     "unchanged",
		},
		{
			name:              "critical finding causes worsened status",
			previousFindings:  []model.Finding{},
			currentFindings:   []model.Finding{{Type: "exif_gps", Value: "52.5200,13.4050", Severity: model.SeverityCritical, SeverityText: "CRITICAL"}},
			wantNewCount:      1,
			wantResolvedCount: 0,
			wantUnchanged:     0,
			wantDirection:     "worsened",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			previous := &model.CrawlReport{
				Host:        "hole.example.org",
				Port:        70,
				DateCrawled: time.Now().Add(-24 * time.Hour),
				SimpleReport: &model.SimpleReport{
					Findings: tt.previousFindings,
				},
			}
			countSeverities(previous.SimpleReport)

			current := &model.CrawlReport{
				Host:        "hole.example.org",
				Port:        70,
				DateCrawled: time.Now(),
				SimpleReport: &model.SimpleReport{
					Findings: tt.currentFindings,
				},
			}
			countSeverities(current.SimpleReport)

			result := compareReports(previous, current, "hole.example.org:70")

			if result.Target != "hole.example.org:70" {
				t.Errorf("Target: got %q, want %q", result.Target, "hole.example.org:70")
			}
			if len(result.NewFindings) != tt.wantNewCount {
				t.Errorf("NewFindings count: got %d, want %d", len(result.NewFindings), tt.wantNewCount)
			}
			if len(result.ResolvedFindings) != tt.wantResolvedCount {
				t.Errorf("ResolvedFindings count: got %d, want %d", len(result.ResolvedFindings), tt.wantResolvedCount)
			}
			if result.UnchangedCount != tt.wantUnchanged {
				t.Errorf("UnchangedCount: got %d, want %d", result.UnchangedCount, tt.wantUnchanged)
			}
			if result.RiskChange.Direction != tt.wantDirection {
				t.Errorf("RiskChange.Direction: got %q, want %q", result.RiskChange.Direction, tt.wantDirection)
			}
		})
	}
}

func TestCompareReportsItemDiff(t *testing.T) {
	t.Parallel()

	previous := &model.CrawlReport{
		Host:        "hole.example.org",
		Port:        70,
		DateCrawled: time.Now().Add(-24 * time.Hour),
		Crawls: map[string]int{
			"gopher://hole.example.org:70/?gopher_type=1":           512,
			"gopher://hole.example.org:70/about.txt?gopher_type=0":  256,
			"gopher://hole.example.org:70/old.txt?gopher_type=0":    128,
			"gopher://hole.example.org:70/legacy.txt?gopher_type=0": 64,
		},
		SimpleReport: &model.SimpleReport{},
	}
	current := &model.CrawlReport{
		Host:        "hole.example.org",
		Port:        70,
		DateCrawled: time.Now(),
		Crawls: map[string]int{
			"gopher://hole.example.org:70/?gopher_type=1":          512,
			"gopher://hole.example.org:70/about.txt?gopher_type=0": 256,
			"gopher://hole.example.org:70/phlog?gopher_type=1":     300,
			"gopher://hole.example.org:70/new.txt?gopher_type=0":   100,
		},
		SimpleReport: &model.SimpleReport{},
	}

	result := compareReports(previous, current, "hole.example.org:70")

	// Map iteration order is random; the diff must come back sorted.
	wantNew := []string{
		"gopher://hole.example.org:70/new.txt?gopher_type=0",
		"gopher://hole.example.org:70/phlog?gopher_type=1",
	}
	wantRemoved := []string{
		"gopher://hole.example.org:70/legacy.txt?gopher_type=0",
		"gopher://hole.example.org:70/old.txt?gopher_type=0",
	}

	if len(result.NewItems) != len(wantNew) {
		t.Fatalf("NewItems count: got %d, want %d", len(result.NewItems), len(wantNew))
	}
	for i, want := range wantNew {
		if result.NewItems[i] != want {
			t.Errorf("NewItems[%d]: got %q, want %q", i, result.NewItems[i], want)
		}
	}

	if len(result.RemovedItems) != len(wantRemoved) {
		t.Fatalf("RemovedItems count: got %d, want %d", len(result.RemovedItems), len(wantRemoved))
	}
	for i, want := range wantRemoved {
		if result.RemovedItems[i] != want {
			t.Errorf("RemovedItems[%d]: got %q, want %q", i, result.RemovedItems[i], want)
		}
	}
}

func TestCompareReportsWithNilSimpleReport(t *testing.T) {
	t.Parallel()

	t.Run("previous crawl without simple report", func(t *testing.T) {
		t.Parallel()

		crawledAt := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
		previous := &model.CrawlReport{
			Host:        "hole.example.org",
			Port:        70,
			DateCrawled: crawledAt,
			Crawls: map[string]int{
				"gopher://hole.example.org:70/?gopher_type=1":          512,
				"gopher://hole.example.org:70/about.txt?gopher_type=0": 256,
			},
		}
		current := &model.CrawlReport{
			Host:        "hole.example.org",
			Port:        70,
			DateCrawled: time.Now(),
			SimpleReport: &model.SimpleReport{
				Findings: []model.Finding{
					{Type: "email_address", Value: "admin@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
				},
				MediumCount: 1,
			},
		}

		result := compareReports(previous, current, "hole.example.org:70")

		if len(result.NewFindings) != 1 {
			t.Errorf("NewFindings count: got %d, want 1", len(result.NewFindings))
		}
		if result.UnchangedCount != 0 {
			t.Errorf("UnchangedCount: got %d, want 0", result.UnchangedCount)
		}
		// Metadata falls back to the raw crawl data
		if result.PreviousCrawl.ItemsCrawled != 2 {
			t.Errorf("PreviousCrawl.ItemsCrawled: got %d, want 2", result.PreviousCrawl.ItemsCrawled)
		}
		if !result.PreviousCrawl.DateCrawled.Equal(crawledAt) {
			t.Errorf("PreviousCrawl.DateCrawled: got %v, want %v", result.PreviousCrawl.DateCrawled, crawledAt)
		}
	})

	t.Run("both crawls without simple report", func(t *testing.T) {
		t.Parallel()

		previous := &model.CrawlReport{Host: "hole.example.org", Port: 70, DateCrawled: time.Now().Add(-time.Hour)}
		current := &model.CrawlReport{Host: "hole.example.org", Port: 70, DateCrawled: time.Now()}

		result := compareReports(previous, current, "hole.example.org:70")

		if len(result.NewFindings) != 0 || len(result.ResolvedFindings) != 0 || result.UnchangedCount != 0 {
			t.Errorf("expected empty comparison, got new=%d resolved=%d unchanged=%d",
				len(result.NewFindings), len(result.ResolvedFindings), result.UnchangedCount)
		}
		if result.RiskChange.Direction != "unchanged" {
			t.Errorf("Direction: got %q, want %q", result.RiskChange.Direction, "unchanged")
		}
	})
}

func TestFindingKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		finding model.Finding
		want    string
	}{
		{
			name:    "generates key with all fields",
			finding: model.Finding{Type: "email_address", Value: "admin@example.org", Location: "gopher://hole.example.org:70/about.txt?gopher_type=0"},
			want:    "email_address|admin@example.org|gopher://hole.example.org:70/about.txt?gopher_type=0",
		},
		{
			name:    "handles empty location",
			finding: model.Finding{Type: "email_address", Value: "admin@example.org"},
			want:    "email_address|admin@example.org|",
		},
		{
			name:    "handles empty value",
			finding: model.Finding{Type: "exif_metadata", Location: "gopher://hole.example.org:70/cam.jpg?gopher_type=I"},
			want:    "exif_metadata||gopher://hole.example.org:70/cam.jpg?gopher_type=I",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := findingKey(tt.finding)
			if got != tt.want {
				t.Errorf("findingKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCalculateRiskChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		previous      CrawlMetadata
		current       CrawlMetadata
		wantDirection string
	}{
		{
			name:          "unchanged when same",
			previous:      CrawlMetadata{CriticalCount: 1, HighCount: 2},
			current:       CrawlMetadata{CriticalCount: 1, HighCount: 2},
			wantDirection: "unchanged",
		},
		{
			name:          "improved when critical decreases",
			previous:      CrawlMetadata{CriticalCount: 2},
			current:       CrawlMetadata{CriticalCount: 1},
			wantDirection: "improved",
		},
		{
			name:          "worsened when critical increases",
			previous:      CrawlMetadata{CriticalCount: 1},
			current:       CrawlMetadata{CriticalCount: 2},
			wantDirection: "worsened",
		},
		{
			name:          "improved when high decreases significantly",
			previous:      CrawlMetadata{HighCount: 10},
			current:       CrawlMetadata{HighCount: 5},
			wantDirection: "improved",
		},
		{
			name:          "worsened when info findings appear",
			previous:      CrawlMetadata{},
			current:       CrawlMetadata{InfoCount: 3},
			wantDirection: "worsened",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			change := calculateRiskChange(tt.previous, tt.current)
			if change.Direction != tt.wantDirection {
				t.Errorf("Direction: got %q, want %q", change.Direction, tt.wantDirection)
			}
		})
	}
}

func TestCalculateRiskChangeDeltas(t *testing.T) {
	t.Parallel()

	previous := CrawlMetadata{CriticalCount: 2, HighCount: 1, MediumCount: 3, LowCount: 0, InfoCount: 5}
	current := CrawlMetadata{CriticalCount: 1, HighCount: 2, MediumCount: 3, LowCount: 4, InfoCount: 2}

	change := calculateRiskChange(previous, current)

	if change.CriticalDelta != -1 {
		t.Errorf("CriticalDelta: got %d, want -1", change.CriticalDelta)
	}
	if change.HighDelta != 1 {
		t.Errorf("HighDelta: got %d, want 1", change.HighDelta)
	}
	if change.MediumDelta != 0 {
		t.Errorf("MediumDelta: got %d, want 0", change.MediumDelta)
	}
	if change.LowDelta != 4 {
		t.Errorf("LowDelta: got %d, want 4", change.LowDelta)
	}
	if change.InfoDelta != -3 {
		t.Errorf("InfoDelta: got %d, want -3", change.InfoDelta)
	}
}

func TestFormatRiskSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		simple *model.SimpleReport
		want   string
	}{
		{
			name:   "nil report returns N/A",
			simple: nil,
			want:   "N/A",
		},
		{
			name:   "all zeros returns No findings",
			simple: &model.SimpleReport{},
			want:   "No findings",
		},
		{
			name:   "formats counts correctly",
			simple: &model.SimpleReport{CriticalCount: 1, HighCount: 2, MediumCount: 3},
			want:   "C:1 H:2 M:3",
		},
		{
			name:   "skips zero counts",
			simple: &model.SimpleReport{HighCount: 5, InfoCount: 10},
			want:   "H:5 I:10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatRiskSummary(tt.simple)
			if got != tt.want {
				t.Errorf("formatRiskSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		delta int
		want  string
	}{
		{name: "positive delta", delta: 5, want: "+5"},
		{name: "negative delta", delta: -3, want: "-3"},
		{name: "zero delta", delta: 0, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatDelta(tt.delta)
			if got != tt.want {
				t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
			}
		})
	}
}

func TestFormatRiskDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		direction string
		want      string
	}{
		{"improved", "IMPROVED (risk decreased)"},
		{"worsened", "WORSENED (risk increased)"},
		{"unchanged", "UNCHANGED"},
		{"unknown", "UNCHANGED"},
	}

	for _, tt := range tests {
		t.Run(tt.direction, func(t *testing.T) {
			t.Parallel()

			got := formatRiskDirection(tt.direction)
			if got != tt.want {
				t.Errorf("formatRiskDirection(%q) = %q, want %q", tt.direction, got, tt.want)
			}
		})
	}
}

func TestOutputComparisonText(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	result := &ComparisonResult{
		Target: "hole.example.org:70",
		PreviousCrawl: CrawlMetadata{
			DateCrawled:   time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
			TotalFindings: 5,
			ItemsCrawled:  12,
			CriticalCount: 1,
			HighCount:     2,
			MediumCount:   1,
			LowCount:      1,
		},
		CurrentCrawl: CrawlMetadata{
			DateCrawled:   time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
			TotalFindings: 4,
			ItemsCrawled:  14,
			CriticalCount: 0,
			HighCount:     2,
			MediumCount:   1,
			LowCount:      1,
		},
		NewFindings: []model.Finding{
			{Type: "email_address", Value: "new@example.org", SeverityText: "MEDIUM", Title: "Email address found"},
		},
		ResolvedFindings: []model.Finding{
			{Type: "exif_gps", Value: "52.5200,13.4050", SeverityText: "CRITICAL", Title: "GPS coordinates in image"},
			{Type: "email_address", Value: "old@example.org", SeverityText: "MEDIUM", Title: "Email address found"},
		},
		UnchangedCount: 2,
		NewItems: []string{
			"gopher://hole.example.org:70/new.txt?gopher_type=0",
		},
		RemovedItems: []string{
			"gopher://hole.example.org:70/old.txt?gopher_type=0",
		},
		RiskChange: RiskChange{
			Direction:     "improved",
			CriticalDelta: -1,
		},
	}

	// Capture output
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := outputComparisonText(result)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("outputComparisonText() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	// Verify key elements are present
	expectedStrings := []string{
		"hole.example.org:70",
		"IMPROVED",
		"(12 items)",
		"(14 items)",
		"New Findings (1)",
		"Resolved Findings (2)",
		"new@example.org",
		"52.5200,13.4050",
		"New Items (1)",
		"Removed Items (1)",
		"gopher://hole.example.org:70/new.txt?gopher_type=0",
		"Unchanged: 2 findings",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("output missing expected string: %q", expected)
		}
	}
}

func TestOutputComparisonJSON(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	result := &ComparisonResult{
		Target: "hole.example.org:70",
		PreviousCrawl: CrawlMetadata{
			DateCrawled:   time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
			TotalFindings: 2,
		},
		CurrentCrawl: CrawlMetadata{
			DateCrawled:   time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
			TotalFindings: 3,
		},
		NewItems:   []string{"gopher://hole.example.org:70/new.txt?gopher_type=0"},
		RiskChange: RiskChange{Direction: "worsened"},
	}

	// Capture output
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := outputComparisonJSON(result)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("outputComparisonJSON() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	// Verify it's valid JSON with expected fields
	if !strings.Contains(output, `"target": "hole.example.org:70"`) {
		t.Error("JSON output missing target field")
	}
	if !strings.Contains(output, `"direction": "worsened"`) {
		t.Error("JSON output missing risk change direction")
	}
	if !strings.Contains(output, `"new_items"`) {
		t.Error("JSON output missing new_items field")
	}
}

func TestOutputComparisonMarkdown(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	result := &ComparisonResult{
		Target: "hole.example.org:70",
		PreviousCrawl: CrawlMetadata{
			DateCrawled:   time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
			TotalFindings: 3,
			ItemsCrawled:  12,
			CriticalCount: 1,
			HighCount:     1,
			MediumCount:   1,
		},
		CurrentCrawl: CrawlMetadata{
			DateCrawled:   time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
			TotalFindings: 2,
			ItemsCrawled:  14,
			CriticalCount: 0,
			HighCount:     1,
			MediumCount:   1,
		},
		NewFindings: []model.Finding{
			{Type: "email_address", Value: "new@example.org", SeverityText: "MEDIUM", Title: "Email address found", Location: "gopher://hole.example.org:70/contact.txt?gopher_type=0"},
		},
		ResolvedFindings: []model.Finding{
			{Type: "exif_gps", Value: "52.5200,13.4050", SeverityText: "CRITICAL", Title: "GPS coordinates in image"},
		},
		UnchangedCount: 1,
		NewItems: []string{
			"gopher://hole.example.org:70/new.txt?gopher_type=0",
		},
		RemovedItems: []string{
			"gopher://hole.example.org:70/old.txt?gopher_type=0",
		},
		RiskChange: RiskChange{
			Direction:     "improved",
			CriticalDelta: -1,
		},
	}

	// Capture output
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	mdErr := outputComparisonMarkdown(result)

	w.Close()
	os.Stdout = oldStdout

	if mdErr != nil {
		t.Fatalf("outputComparisonMarkdown() error = %v", mdErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	// Verify markdown elements
	expectedStrings := []string{
		"# Crawl Comparison: hole.example.org:70",
		"## Summary",
		"**Risk Status:**",
		"| Metric | Previous | Current | Change |",
		"| Items | 12 | 14 | +2 |",
		"## New Findings (1)",
		"## Resolved Findings (1)",
		"new@example.org",
		"52.5200,13.4050",
		"Location: `gopher://hole.example.org:70/contact.txt?gopher_type=0`",
		"## New Items (1)",
		"## Removed Items (1)",
		"*1 findings unchanged*",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("markdown output missing expected string: %q\nOutput: %s", expected, output)
		}
	}
}

func TestListCrawledTargetsIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Test with empty database
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err = listCrawledTargets(ctx, db)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("listCrawledTargets() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "No crawled holes found") {
		t.Error("expected 'No crawled holes found' message")
	}

	// Add some data
	report := &model.CrawlReport{
		StartURL:     "gopher://hole.example.org",
		Host:         "hole.example.org",
		Port:         70,
		DateCrawled:  time.Now(),
		SimpleReport: &model.SimpleReport{},
	}
	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	// Test with data
	r, w, _ = os.Pipe()
	os.Stdout = w

	err = listCrawledTargets(ctx, db)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("listCrawledTargets() error = %v", err)
	}

	buf.Reset()
	_, _ = buf.ReadFrom(r)
	output = buf.String()

	if !strings.Contains(output, "hole.example.org:70") {
		t.Error("expected target to be listed")
	}
}

func TestListCrawlHistoryIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Add test data
	for i := range 3 {
		report := &model.CrawlReport{
			StartURL:    "gopher://hole.example.org",
			Host:        "hole.example.org",
			Port:        70,
			DateCrawled: time.Now().Add(time.Duration(-i) * time.Hour),
			SimpleReport: &model.SimpleReport{
				CriticalCount: i,
				HighCount:     i + 1,
				ItemsCrawled:  i + 5,
			},
		}
		if err := db.SaveReport(ctx, report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}

	// Test listing - capture output using pipe
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Run the function
	listErr := listCrawlHistory(ctx, db, "hole.example.org", 70)

	// Close writer and restore stdout before reading
	w.Close()
	os.Stdout = oldStdout

	if listErr != nil {
		t.Fatalf("listCrawlHistory() error = %v", listErr)
	}

	// Read captured output
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "3 crawls") {
		t.Errorf("expected '3 crawls' in output, got: %s", output)
	}
	if !strings.Contains(output, "hole.example.org:70") {
		t.Errorf("expected target name in output, got: %s", output)
	}
	if !strings.Contains(output, "H:") {
		t.Errorf("expected risk summary in output, got: %s", output)
	}
}

func TestListCrawlHistoryEmpty(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	listErr := listCrawlHistory(context.Background(), db, "hole.example.org", 70)

	w.Close()
	os.Stdout = oldStdout

	if listErr != nil {
		t.Fatalf("listCrawlHistory() error = %v", listErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "No crawl history found for hole.example.org:70") {
		t.Errorf("expected 'No crawl history found' message, got: %s", output)
	}
}

func TestRunComparisonIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Add two crawl reports. The insertion order breaks the timestamp
	// tie, so the second save becomes the current crawl.
	previousReport := &model.CrawlReport{
		StartURL:    "gopher://hole.example.org",
		Host:        "hole.example.org",
		Port:        70,
		DateCrawled: time.Now().Add(-24 * time.Hour),
		Crawls: map[string]int{
			"gopher://hole.example.org:70/?gopher_type=1":        512,
			"gopher://hole.example.org:70/old.txt?gopher_type=0": 128,
		},
		SimpleReport: &model.SimpleReport{
			Findings: []model.Finding{
				{Type: "email_address", Value: "old@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM", Title: "Email address found"},
			},
			MediumCount:  1,
			ItemsCrawled: 2,
		},
	}
	currentReport := &model.CrawlReport{
		StartURL:    "gopher://hole.example.org",
		Host:        "hole.example.org",
		Port:        70,
		DateCrawled: time.Now(),
		Crawls: map[string]int{
			"gopher://hole.example.org:70/?gopher_type=1":        512,
			"gopher://hole.example.org:70/new.txt?gopher_type=0": 256,
		},
		SimpleReport: &model.SimpleReport{
			Findings: []model.Finding{
				{Type: "email_address", Value: "new@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM", Title: "Email address found"},
			},
			MediumCount:  1,
			ItemsCrawled: 2,
		},
	}

	if err := db.SaveReport(ctx, previousReport); err != nil {
		t.Fatalf("failed to save previous report: %v", err)
	}
	if err := db.SaveReport(ctx, currentReport); err != nil {
		t.Fatalf("failed to save current report: %v", err)
	}

	// Test comparison - capture output using pipe
	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	// Run the function
	compErr := runComparison(ctx, db, "hole.example.org", 70, "", false, false)

	// Close writer and restore stdout before reading
	w.Close()
	os.Stdout = oldStdout

	if compErr != nil {
		t.Fatalf("runComparison() error = %v", compErr)
	}

	// Read captured output
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	// Verify comparison output
	if !strings.Contains(output, "hole.example.org:70") {
		t.Errorf("expected target name in output, got: %s", output)
	}
	if !strings.Contains(output, "New Findings") {
		t.Errorf("expected 'New Findings' section, got: %s", output)
	}
	if !strings.Contains(output, "Resolved Findings") {
		t.Errorf("expected 'Resolved Findings' section, got: %s", output)
	}
	if !strings.Contains(output, "New Items") {
		t.Errorf("expected 'New Items' section, got: %s", output)
	}
	if !strings.Contains(output, "Removed Items") {
		t.Errorf("expected 'Removed Items' section, got: %s", output)
	}
}

func TestRunComparisonWithSinceDate(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Add crawl reports with different dates
	oldReport := &model.CrawlReport{
		StartURL:    "gopher://hole.example.org",
		Host:        "hole.example.org",
		Port:        70,
		DateCrawled: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		SimpleReport: &model.SimpleReport{
			Findings: []model.Finding{
				{Type: "email_address", Value: "old@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM", Title: "Email address found"},
			},
			MediumCount: 1,
		},
	}
	newReport := &model.CrawlReport{
		StartURL:    "gopher://hole.example.org",
		Host:        "hole.example.org",
		Port:        70,
		DateCrawled: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		SimpleReport: &model.SimpleReport{
			Findings: []model.Finding{
				{Type: "email_address", Value: "new@example.org", Severity: model.SeverityMedium, SeverityText: "MEDIUM", Title: "Email address found"},
			},
			MediumCount: 1,
		},
	}

	if err := db.SaveReport(ctx, oldReport); err != nil {
		t.Fatalf("failed to save old report: %v", err)
	}
	if err := db.SaveReport(ctx, newReport); err != nil {
		t.Fatalf("failed to save new report: %v", err)
	}

	// Test comparison with --since date
	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	compErr := runComparison(ctx, db, "hole.example.org", 70, "2026-01-01", false, false)

	w.Close()
	os.Stdout = oldStdout

	if compErr != nil {
		t.Fatalf("runComparison() error = %v", compErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "hole.example.org:70") {
		t.Errorf("expected target name in output, got: %s", output)
	}
	if !strings.Contains(output, "new@example.org") {
		t.Errorf("expected new finding in output, got: %s", output)
	}
}

func TestRunComparisonErrors(t *testing.T) {
	t.Parallel()

	// All error paths return before anything is printed, so no stdout
	// capture is needed here.
	saveReport := func(t *testing.T, db *database.CrawlDB, crawledAt time.Time) {
		t.Helper()
		report := &model.CrawlReport{
			StartURL:     "gopher://hole.example.org",
			Host:         "hole.example.org",
			Port:         70,
			DateCrawled:  crawledAt,
			SimpleReport: &model.SimpleReport{},
		}
		if err := db.SaveReport(context.Background(), report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}

	t.Run("fails when hole was never crawled", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		err = runComparison(context.Background(), db, "hole.example.org", 70, "", false, false)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "no crawl history found") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("fails with a single crawl", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		saveReport(t, db, time.Now())

		err = runComparison(context.Background(), db, "hole.example.org", 70, "", false, false)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "at least 2 crawls are required") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("fails with invalid since date", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		saveReport(t, db, time.Now())

		err = runComparison(context.Background(), db, "hole.example.org", 70, "01/02/2026", false, false)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "invalid date format") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("fails when no crawls since date", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		saveReport(t, db, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
		saveReport(t, db, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))

		err = runComparison(context.Background(), db, "hole.example.org", 70, "2027-01-01", false, false)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "no crawls found since 2027-01-01") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("fails when only the current crawl matches since date", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		saveReport(t, db, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
		saveReport(t, db, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))

		err = runComparison(context.Background(), db, "hole.example.org", 70, "2026-03-01", false, false)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "only one crawl found since 2026-03-01") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestRunCompareCmdRequiresTarget(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()
	cmd.SetArgs([]string{})

	// Validation happens before the database is opened, so this fails
	// fast without touching the XDG data directory.
	err := cmd.Execute()

	if err == nil {
		t.Error("expected error when no target provided")
	}
	if !strings.Contains(err.Error(), "gopher URL is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunCompareCmdInvalidTarget(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()
	cmd.SetArgs([]string{"http://hole.example.org"})

	err := cmd.Execute()

	if err == nil {
		t.Error("expected error for invalid target")
	}
	if !strings.Contains(err.Error(), "invalid target") {
		t.Errorf("unexpected error: %v", err)
	}
}
