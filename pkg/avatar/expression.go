// Package avatar defines the expression vocabulary shared between the
// conversation core and the presentation layer. The core validates
// expression names against this set; rendering them is someone else's job.
package avatar

// Expression is a named facial expression of the avatar.
type Expression string

// The full expression set the model may select.
const (
	Angry       Expression = "angry"
	Confused    Expression = "confused"
	Embarrassed Expression = "embarrassed"
	Neutral     Expression = "neutral"
	Sleepy      Expression = "sleepy"
	Sad         Expression = "sad"
	Surprised   Expression = "surprised"
	Worried     Expression = "worried"
	Smile       Expression = "smile"
)

var all = map[Expression]bool{
	Angry:       true,
	Confused:    true,
	Embarrassed: true,
	Neutral:     true,
	Sleepy:      true,
	Sad:         true,
	Surprised:   true,
	Worried:     true,
	Smile:       true,
}

// Valid reports whether e names a known expression.
func (e Expression) Valid() bool {
	return all[e]
}

// Names returns every valid expression name, for tool schema declarations.
func Names() []string {
	names := make([]string, 0, len(all))
	for _, e := range []Expression{Angry, Confused, Embarrassed, Neutral, Sleepy, Sad, Surprised, Worried, Smile} {
		names = append(names, string(e))
	}
	return names
}
