package domain

// AdminCode is a first-level administrative region from admin1CodesASCII.txt.
type AdminCode struct {
	Code      string // "US.CA"
	Name      string
	ASCIIName string
	GeonameID int64
}
