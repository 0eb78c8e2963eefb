package page

import "strings"

var normalizer = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"&lsquo;", "'",
	"&rsquo;", "'",
	"&#8216;", "'",
	"&#8217;", "'",
	"&#x2018;", "'",
	"&#x2019;", "'",
	"\u00a0", " ",
	"&nbsp;", " ",
	"&#160;", " ",
	"&#xa0;", " ",
	"&#xA0;", " ",
)

// Normalize replaces curly single quotes with an apostrophe and non-breaking
// spaces with a plain space, in both character and entity form.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return normalizer.Replace(s)
}
