package audit

import (
	"context"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/felipeandrian/navfep-gopher/internal/model"
)

// EXIFAnalyzer extracts and analyzes EXIF metadata from published images.
// EXIF data can contain GPS coordinates, camera serial numbers, software
// information, author tags and timestamps that identify the operator.
//
// Design decision: The analyzer reads image bytes straight from the
// crawl records rather than fetching images itself because:
//  1. The spider already retrieved every image exactly once
//  2. No second network round trip, no second politeness delay
//  3. The audit stays pure computation and needs no transport config
//
// This analyzer checks for:
//   - GPS coordinates (location disclosure)
//   - Camera make/model/serial (device identification)
//   - Software information (editing software, OS)
//   - Timestamps (timezone inference)
//   - Author/copyright information (identity disclosure)
type EXIFAnalyzer struct{}

// NewEXIFAnalyzer creates a new EXIFAnalyzer.
func NewEXIFAnalyzer() *EXIFAnalyzer {
	return &EXIFAnalyzer{}
}

// Name returns the analyzer name.
func (a *EXIFAnalyzer) Name() string {
	return "exif"
}

// Category returns the analyzer category.
func (a *EXIFAnalyzer) Category() string {
	return CategoryIdentity
}

// Analyze extracts EXIF metadata from the image records of the crawl.
//
// All image records are scanned regardless of subtype: the extraction
// does a byte search for an EXIF block, so formats that cannot carry
// one (GIF) simply find nothing.
func (a *EXIFAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	for _, rec := range data.Records {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		if !rec.IsImage() || len(rec.Raw) == 0 {
			continue
		}

		findings = append(findings, a.analyzeImageData(rec.Raw, rec.URL)...)
	}

	return findings, nil
}

// analyzeImageData extracts EXIF data from image bytes.
func (a *EXIFAnalyzer) analyzeImageData(imageData []byte, itemURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	// Try to extract EXIF data
	rawExif, err := exif.SearchAndExtractExif(imageData)
	if err != nil || rawExif == nil {
		return findings
	}

	// Parse EXIF entries
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return findings
	}

	// Analyze specific EXIF tags
	for _, entry := range entries {
		tagName := entry.TagName
		value := tagName + ": " + entry.Formatted

		switch tagName {
		// GPS coordinates - location disclosure
		case "GPSLatitude", "GPSLongitude", "GPSLatitudeRef", "GPSLongitudeRef":
			findings = append(findings, model.NewFinding(
				"exif_gps",
				"GPS Coordinates in Image EXIF",
				"An image contains GPS coordinates in its EXIF metadata. This reveals the location where the image was taken.",
				value,
				itemURL,
			))

		// Camera identification
		case "Make", "Model":
			findings = append(findings, model.NewFinding(
				"exif_metadata",
				"Camera Information in Image EXIF",
				"An image contains camera make/model information. This can help identify the device used.",
				value,
				itemURL,
			))

		// Serial numbers - unique device identifiers
		case "SerialNumber", "CameraSerialNumber", "BodySerialNumber", "LensSerialNumber":
			findings = append(findings, model.NewFinding(
				"exif_metadata",
				"Device Serial Number in Image EXIF",
				"An image contains a device serial number. This is a unique identifier that can track the device across photos.",
				value,
				itemURL,
			))

		// Software information
		case "Software", "ProcessingSoftware":
			findings = append(findings, model.NewFinding(
				"exif_metadata",
				"Software Information in Image EXIF",
				"An image contains software information that reveals editing tools or operating system used.",
				value,
				itemURL,
			))

		// Author/Copyright - identity leak
		case "Artist", "Author", "Copyright", "XPAuthor":
			findings = append(findings, model.NewFinding(
				"exif_metadata",
				"Author Information in Image EXIF",
				"An image contains author or copyright information that could identify the creator.",
				value,
				itemURL,
			))

		// DateTime - can reveal timezone and activity patterns
		case "DateTimeOriginal", "DateTimeDigitized", "DateTime":
			findings = append(findings, model.NewFinding(
				"exif_metadata",
				"Timestamp in Image EXIF",
				"An image contains timestamp information. Combined with other data, this can help determine timezone and activity patterns.",
				value,
				itemURL,
			))

		// Host computer
		case "HostComputer":
			findings = append(findings, model.NewFinding(
				"exif_metadata",
				"Host Computer in Image EXIF",
				"An image contains the name of the computer used to process it.",
				value,
				itemURL,
			))
		}
	}

	return findings
}

// Ensure EXIFAnalyzer implements CheckAnalyzer.
var _ CheckAnalyzer = (*EXIFAnalyzer)(nil)
