package model

// Severity represents the risk level of an audit finding.
// This allows categorizing findings by their potential privacy impact.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct privacy impact.
	// Examples: linked onion services, item-type inventory.
	// These may still be useful for correlation but don't expose identity directly.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: EXIF metadata without GPS, links out to the web.
	// These could potentially be used for correlation but require additional data.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: email addresses, wallet addresses, telnet session pointers.
	// These provide identity clues that could be combined with other data.
	SeverityMedium

	// SeverityHigh indicates serious issues that significantly risk privacy.
	// Examples: exposed access credentials, encrypted private keys.
	SeverityHigh

	// SeverityCritical indicates severe issues that likely compromise privacy.
	// Examples: GPS coordinates embedded in a published image, exposed
	// private key material. These findings require immediate attention.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping ensures consistent risk assessment across the application.
//
// Design decision: We use a map rather than embedding severity in each finding type
// because:
// 1. It allows updating risk assessments without modifying type definitions
// 2. It provides a single source of truth for risk levels
// 3. It makes it easy to generate severity documentation
var findingInfoMapping = map[string]FindingInfo{
	// CRITICAL - Immediate privacy compromise
	"exif_gps": {
		Severity:       SeverityCritical,
		Impact:         "An image served by this gopher hole embeds GPS coordinates, potentially revealing where it was taken.",
		Recommendation: "Strip all EXIF metadata from images before publishing them.",
	},
	"tor_service_key": {
		Severity:       SeverityCritical,
		Impact:         "Leaked hidden service key material lets anyone impersonate the service and intercept its visitors.",
		Recommendation: "Remove the key material, generate a new onion address, and migrate users to it.",
	},
	"pem_private_key": {
		Severity:       SeverityCritical,
		Impact:         "An exposed private key can decrypt past communications or impersonate whatever the key protects.",
		Recommendation: "Remove the key from the published tree and rotate it everywhere it is used.",
	},

	// HIGH - Serious privacy risk
	"encrypted_private_key": {
		Severity:       SeverityHigh,
		Impact:         "The key is passphrase-protected, but publishing it invites offline cracking attempts.",
		Recommendation: "Remove the key from the published tree and consider rotating it.",
	},
	"aws_access_key": {
		Severity:       SeverityHigh,
		Impact:         "Access Key IDs identify an AWS account and pair with secret keys that often leak alongside them.",
		Recommendation: "Deactivate the key in AWS IAM and remove it from the published content.",
	},
	"github_token": {
		Severity:       SeverityHigh,
		Impact:         "GitHub tokens grant repository access and tie the hole to a specific account.",
		Recommendation: "Revoke the token on GitHub and remove it from the published content.",
	},

	// MEDIUM - Moderate privacy risk
	"email_address": {
		Severity:       SeverityMedium,
		Impact:         "Email addresses can be used to correlate identities across services.",
		Recommendation: "Use dedicated contact addresses or remove email addresses from published items.",
	},
	"telnet_item": {
		Severity:       SeverityMedium,
		Impact:         "A menu entry points at a telnet service; telnet sessions are unencrypted and expose credentials.",
		Recommendation: "Remove the telnet pointer or replace the service with an SSH equivalent.",
	},
	"wallet_bitcoin": {
		Severity:       SeverityMedium,
		Impact:         "Bitcoin transactions are public; exchange records and clustering can tie the address to a person.",
		Recommendation: "Use a fresh address per donor or a payment processor that hides the receiving address.",
	},
	"wallet_ethereum": {
		Severity:       SeverityMedium,
		Impact:         "Ethereum transactions are public; the address links the hole to on-chain activity.",
		Recommendation: "Use a dedicated address that is not reused across services.",
	},
	"wallet_litecoin": {
		Severity:       SeverityMedium,
		Impact:         "Litecoin transactions are public; the address links the hole to on-chain activity.",
		Recommendation: "Use a dedicated address that is not reused across services.",
	},

	// LOW - Minor privacy risk
	"exif_metadata": {
		Severity:       SeverityLow,
		Impact:         "EXIF metadata in images may contain camera model, software, or timestamp information.",
		Recommendation: "Strip EXIF metadata from all images before publishing.",
	},
	"wallet_monero": {
		Severity:       SeverityLow,
		Impact:         "Monero transactions are private, but the published address still marks the hole as accepting payments.",
		Recommendation: "Rotate the published address if it is shared with other services.",
	},
	"external_web_link": {
		Severity:       SeverityLow,
		Impact:         "An 'h' entry links out of gopherspace; followers leave the gopher client and fetch over the web.",
		Recommendation: "Verify the destination is intended and does not track visitors.",
	},

	// INFO - No direct privacy risk
	"onion_link_v3": {
		Severity:       SeverityInfo,
		Impact:         "V3 onion link found. May indicate related services.",
		Recommendation: "Document relationships for operational security awareness.",
	},
	"onion_link_v2": {
		Severity:       SeverityInfo,
		Impact:         "Deprecated V2 onion link found. V2 services are no longer supported.",
		Recommendation: "Update references to V3 onion addresses.",
	},
	"server_error_item": {
		Severity:       SeverityInfo,
		Impact:         "The server emitted a type-3 error entry, usually a broken selector or misconfiguration.",
		Recommendation: "Fix or remove the selector the error entry refers to.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding and assess risk.",
	}
}
