package submission

import "strings"

// Resolve picks the input mode from the current form state.
//
// A file always wins over pasted text. Text is accepted when it has any
// non-whitespace content and is passed on as typed. Company fields are
// carried through untouched; their format is the scoring service's concern.
func Resolve(f FormValues) (Input, error) {
	company := Company{Email: f.CompanyEmail, Website: f.CompanyWebsite}

	if hasFile(f.File) {
		return NewFileInput(*f.File, company), nil
	}
	if strings.TrimSpace(f.Text) != "" {
		return NewTextInput(f.Text, company), nil
	}
	return Input{}, ErrNoInputProvided
}

// TextIgnored reports whether Resolve would drop non-empty text in favour of a file
func TextIgnored(f FormValues) bool {
	return hasFile(f.File) && strings.TrimSpace(f.Text) != ""
}

func hasFile(u *Upload) bool {
	return u != nil && (u.Filename != "" || len(u.Content) > 0)
}
