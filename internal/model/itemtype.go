package model

import "errors"

// ItemType errors.
var (
	// ErrInvalidItemType is returned when an item type is not a single character.
	ErrInvalidItemType = errors.New("item type must be a single character")
)

// ItemType is the single-character type code carried by every gopher menu
// line and, for navigation, round-tripped through the gopher_type query
// parameter. The zero value means "no type requested" and selects the
// generic menu/text rendering path.
type ItemType byte

// Item types from RFC 1436 plus the de facto extensions every modern
// gopher server emits ('h', 'i', 'p').
const (
	// ItemNone is the zero value: no type was requested.
	ItemNone ItemType = 0
	// ItemText is a plain text file ('0').
	ItemText ItemType = '0'
	// ItemMenu is a submenu / directory listing ('1').
	ItemMenu ItemType = '1'
	// ItemCSO is a CSO phone-book server ('2').
	ItemCSO ItemType = '2'
	// ItemError is an error entry emitted by the server ('3').
	ItemError ItemType = '3'
	// ItemBinHex is a BinHexed Macintosh file ('4').
	ItemBinHex ItemType = '4'
	// ItemDOSArchive is a DOS binary archive ('5').
	ItemDOSArchive ItemType = '5'
	// ItemUUEncoded is a uuencoded file ('6').
	ItemUUEncoded ItemType = '6'
	// ItemSearch is a full-text search server ('7').
	ItemSearch ItemType = '7'
	// ItemTelnet is a telnet session pointer ('8').
	ItemTelnet ItemType = '8'
	// ItemBinary is a generic binary file ('9').
	ItemBinary ItemType = '9'
	// ItemGIF is a GIF image ('g').
	ItemGIF ItemType = 'g'
	// ItemJPEG is a JPEG image ('I').
	ItemJPEG ItemType = 'I'
	// ItemPNG is a PNG image ('p'). Not in RFC 1436 but universally used.
	ItemPNG ItemType = 'p'
	// ItemHTML is an HTML document or external URL ('h').
	ItemHTML ItemType = 'h'
	// ItemInfo is a non-selectable information line ('i').
	ItemInfo ItemType = 'i'
)

// ParseItemType parses the value of a gopher_type query parameter.
// The value must be exactly one character; an empty string yields ItemNone.
func ParseItemType(s string) (ItemType, error) {
	switch len(s) {
	case 0:
		return ItemNone, nil
	case 1:
		return ItemType(s[0]), nil
	default:
		return ItemNone, ErrInvalidItemType
	}
}

// String returns the type code as a one-character string, or "" for ItemNone.
func (t ItemType) String() string {
	if t == ItemNone {
		return ""
	}
	return string(rune(t))
}

// IsImage reports whether responses of this type are image data that must
// be rendered via the image path rather than the menu/text path.
func (t ItemType) IsImage() bool {
	return t == ItemGIF || t == ItemJPEG || t == ItemPNG
}

// IsInfo reports whether this is a non-selectable information line.
func (t ItemType) IsInfo() bool {
	return t == ItemInfo
}

// IsMenu reports whether responses of this type are gopher menus.
func (t ItemType) IsMenu() bool {
	return t == ItemMenu
}

// MIMEType returns the MIME type for image items. Non-image types map to
// a generic binary MIME type; the server-declared type is trusted and the
// payload bytes are never sniffed.
func (t ItemType) MIMEType() string {
	switch t {
	case ItemGIF:
		return "image/gif"
	case ItemPNG:
		return "image/png"
	case ItemJPEG:
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// Description returns a short human-readable name for the item type.
// Unknown codes return "unknown".
func (t ItemType) Description() string {
	switch t {
	case ItemNone:
		return "none"
	case ItemText:
		return "text file"
	case ItemMenu:
		return "menu"
	case ItemCSO:
		return "CSO phone book"
	case ItemError:
		return "server error"
	case ItemBinHex:
		return "BinHex file"
	case ItemDOSArchive:
		return "DOS archive"
	case ItemUUEncoded:
		return "uuencoded file"
	case ItemSearch:
		return "search server"
	case ItemTelnet:
		return "telnet session"
	case ItemBinary:
		return "binary file"
	case ItemGIF:
		return "GIF image"
	case ItemJPEG:
		return "JPEG image"
	case ItemPNG:
		return "PNG image"
	case ItemHTML:
		return "HTML document"
	case ItemInfo:
		return "information"
	default:
		return "unknown"
	}
}
