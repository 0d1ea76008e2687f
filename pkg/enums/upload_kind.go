package enums

import "fmt"

// UploadKind defines which asset class an upload belongs to. The kind picks
// the size ceiling, the resize bounding box, and the storage subdirectory.
type UploadKind string

const (
	UploadKindLogo         UploadKind = "logo"
	UploadKindProductImage UploadKind = "product_image"
	UploadKindCertificate  UploadKind = "certificate"
	UploadKindMarketing    UploadKind = "marketing"
	UploadKindPackageImage UploadKind = "package_image"
)

var validUploadKinds = []UploadKind{
	UploadKindLogo,
	UploadKindProductImage,
	UploadKindCertificate,
	UploadKindMarketing,
	UploadKindPackageImage,
}

// String returns the literal string for the kind.
func (u UploadKind) String() string {
	return string(u)
}

// IsValid reports whether the kind is known.
func (u UploadKind) IsValid() bool {
	for _, candidate := range validUploadKinds {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUploadKind converts raw input into an UploadKind.
func ParseUploadKind(value string) (UploadKind, error) {
	for _, candidate := range validUploadKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid upload kind %q", value)
}
