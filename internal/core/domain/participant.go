package domain

// Placeholder tokens embedded in template run text.
const (
	// TokenName is replaced with the participant's name.
	TokenName = "xxxxx"

	// TokenConference is replaced with the conference name.
	TokenConference = "ttttt"

	// TokenDates is replaced with the delegate or official date range.
	TokenDates = "ddddd"
)

// Participant is one recipient of an absence letter.
type Participant struct {
	// Name is the participant's display name, used verbatim in the letter.
	Name string `json:"name" yaml:"name"`

	// IsDelegate selects the delegate date range instead of the official one.
	IsDelegate bool `json:"delegate" yaml:"delegate"`
}

// BatchConfig is the immutable input of one generation run.
// Front ends validate it before handing it to the batch worker.
type BatchConfig struct {
	// APIKey is the conversion service credential.
	APIKey string `validate:"required"`

	// TemplatePath is the .docx template to clone for every participant.
	TemplatePath string `validate:"required"`

	// OutputDir receives the generated documents. Created if absent.
	OutputDir string `validate:"required"`

	// ConferenceName replaces the conference token.
	ConferenceName string `validate:"required"`

	// DelegateDates is the date range used for delegates.
	DelegateDates string

	// OfficialDates is the date range used for officials.
	OfficialDates string

	// Participants is processed in order. Must not be empty.
	Participants []Participant `validate:"required,min=1"`
}

// DatesFor returns the date range that applies to the participant.
func (c BatchConfig) DatesFor(p Participant) string {
	if p.IsDelegate {
		return c.DelegateDates
	}
	return c.OfficialDates
}

// Placeholder maps one fixed token to its replacement.
type Placeholder struct {
	Token string
	Value string
}

// PlaceholderMap is the ordered set of replacements for one participant.
// It always holds the same three tokens, in the same order.
type PlaceholderMap []Placeholder

// NewPlaceholderMap derives the replacements for a participant.
func NewPlaceholderMap(cfg BatchConfig, p Participant) PlaceholderMap {
	return PlaceholderMap{
		{Token: TokenName, Value: p.Name},
		{Token: TokenConference, Value: cfg.ConferenceName},
		{Token: TokenDates, Value: cfg.DatesFor(p)},
	}
}

// Value returns the replacement for token and whether it is mapped.
func (m PlaceholderMap) Value(token string) (string, bool) {
	for _, p := range m {
		if p.Token == token {
			return p.Value, true
		}
	}
	return "", false
}
