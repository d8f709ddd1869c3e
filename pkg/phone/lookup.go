package phone

import (
	"errors"
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidNumber marks inputs the metadata library cannot parse.
var ErrInvalidNumber = errors.New("invalid phone number")

// Info is the descriptive metadata returned for a parsed number.
type Info struct {
	Country string `json:"country"`
	Carrier string `json:"operator"`
	Region  string `json:"region"`
}

// Target joins a dialing code and local number the way the web client
// submits them: plain concatenation, no cleanup. Every consumer of a full
// number goes through this, so lookup and dispatch cannot drift apart.
func Target(code, number string) string {
	return code + number
}

// Lookup resolves phone-number metadata. It is stateless; the underlying
// library ships its own data set.
type Lookup struct{}

func NewLookup() *Lookup {
	return &Lookup{}
}

// Info parses dialing code + local number and returns the country
// description and carrier name localized to lang.
func (l *Lookup) Info(code, number, lang string) (*Info, error) {
	parsed, err := phonenumbers.Parse(Target(code, number), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}

	country, err := phonenumbers.GetGeocodingForNumber(parsed, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve country: %w", err)
	}

	carrier, err := phonenumbers.GetCarrierForNumber(parsed, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve carrier: %w", err)
	}

	return &Info{
		Country: country,
		Carrier: carrier,
		Region:  phonenumbers.GetRegionCodeForNumber(parsed),
	}, nil
}
