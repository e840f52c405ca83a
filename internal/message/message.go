// Package message holds the handful of fixed text snippets shared between
// the summary renderer and the command executor's replies.
package message

// Footer is appended to every bot-authored comment: summary comments and
// command replies alike. See DESIGN.md Open Question decision #4.
func Footer() string {
	return "_I am a bot. Questions or feedback? See the project at " +
		"https://github.com/prbot/prbot._"
}
