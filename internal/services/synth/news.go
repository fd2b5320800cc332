package synth

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"FinForge/internal/domain/models"
	"FinForge/pkg/util"
)

type newsTemplate struct {
	title      string
	impact     models.Impact
	importance int
}

var newsTemplates = []newsTemplate{
	{"{name} ({symbol}) beats quarterly earnings expectations", models.ImpactPositive, 9},
	{"Analysts raise {symbol} price target on strong {sector} demand", models.ImpactPositive, 7},
	{"{sector} sector faces renewed regulatory scrutiny", models.ImpactNegative, 6},
	{"{name} announces expanded share buyback program", models.ImpactPositive, 8},
	{"Supply chain concerns weigh on {sector} peers including {symbol}", models.ImpactNegative, 5},
	{"{symbol} trading volume in line with its 30-day average", models.ImpactNeutral, 3},
}

// NewsSynthesizer renders the fixed headline templates for an instrument,
// one per calendar day going back from today.
type NewsSynthesizer struct {
	now func() time.Time
}

type NewsOption func(*NewsSynthesizer)

func WithNewsClock(now func() time.Time) NewsOption {
	return func(n *NewsSynthesizer) {
		if now != nil {
			n.now = now
		}
	}
}

func NewNewsSynthesizer(opts ...NewsOption) *NewsSynthesizer {
	n := &NewsSynthesizer{now: time.Now}
	for _, o := range opts {
		o(n)
	}
	return n
}

func (n *NewsSynthesizer) Generate(inst models.InstrumentDescriptor) ([]models.NewsImpactRecord, error) {
	if err := ValidateInstrument(inst); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(inst.Name)
	if name == "" {
		name = inst.Symbol
	}
	sector := strings.TrimSpace(inst.Sector)
	if sector == "" {
		sector = "Market"
	} else {
		sector = upperFirst(sector)
	}
	r := strings.NewReplacer("{name}", name, "{symbol}", inst.Symbol, "{sector}", sector)

	today := util.StartOfDay(n.now())
	out := make([]models.NewsImpactRecord, 0, len(newsTemplates))
	for i, tpl := range newsTemplates {
		out = append(out, models.NewsImpactRecord{
			Title:      r.Replace(tpl.title),
			Impact:     tpl.impact,
			Importance: tpl.importance,
			Date:       today.AddDate(0, 0, -i),
		})
	}
	return out, nil
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
