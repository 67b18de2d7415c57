package submission

// Mode tells which input variant an Input carries
type Mode string

const (
	ModeText Mode = "text"
	ModeFile Mode = "file"
)

// Company is optional identity metadata sent with either mode.
// Empty strings mean "not supplied".
type Company struct {
	Email   string
	Website string
}

// Upload is a file picked by the user
type Upload struct {
	Filename string
	Content  []byte
}

// FormValues is the raw form state as the host received it
type FormValues struct {
	Text           string
	File           *Upload
	CompanyEmail   string
	CompanyWebsite string
}

// Input is a validated submission. Only one of Text / File is meaningful,
// selected by Mode. Build it with NewTextInput or NewFileInput.
type Input struct {
	Mode    Mode
	Text    string
	File    Upload
	Company Company
}

func NewTextInput(body string, company Company) Input {
	return Input{Mode: ModeText, Text: body, Company: company}
}

func NewFileInput(file Upload, company Company) Input {
	return Input{Mode: ModeFile, File: file, Company: company}
}

func (in Input) IsFile() bool { return in.Mode == ModeFile }

// Filename returns the uploaded file name, or "" for text submissions
func (in Input) Filename() string {
	if in.Mode != ModeFile {
		return ""
	}
	return in.File.Filename
}
