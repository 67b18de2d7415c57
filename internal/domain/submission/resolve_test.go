package submission

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_TextOnly(t *testing.T) {
	in, err := Resolve(FormValues{
		Text:         "  We are hiring a remote data entry clerk  ",
		CompanyEmail: "hr@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, ModeText, in.Mode)
	assert.Equal(t, "  We are hiring a remote data entry clerk  ", in.Text)
	assert.Equal(t, "hr@example.com", in.Company.Email)
	assert.Equal(t, "", in.Company.Website)
	assert.Equal(t, "", in.Filename())
}

func TestResolve_FileWinsOverText(t *testing.T) {
	cases := []string{"", "some pasted text"}
	for _, text := range cases {
		in, err := Resolve(FormValues{
			Text: text,
			File: &Upload{Filename: "offer.pdf", Content: []byte("%PDF-1.4")},
		})
		require.NoError(t, err)
		assert.Equal(t, ModeFile, in.Mode, "text=%q", text)
		assert.True(t, in.IsFile())
		assert.Equal(t, "offer.pdf", in.Filename())
		assert.Empty(t, in.Text)
	}
}

func TestResolve_NoInput(t *testing.T) {
	cases := []FormValues{
		{},
		{Text: "   \n\t"},
		{File: &Upload{}},
		{CompanyEmail: "a@b.c", CompanyWebsite: "https://b.c"},
	}
	for i, f := range cases {
		_, err := Resolve(f)
		assert.ErrorIs(t, err, ErrNoInputProvided, "case %d", i)
	}
}

func TestResolve_CompanyFieldsUntouched(t *testing.T) {
	in, err := Resolve(FormValues{
		File:           &Upload{Filename: "x.txt", Content: []byte("x")},
		CompanyEmail:   "not an email",
		CompanyWebsite: "also not a url",
	})
	require.NoError(t, err)
	assert.Equal(t, Company{Email: "not an email", Website: "also not a url"}, in.Company)
}

func TestTextIgnored(t *testing.T) {
	assert.True(t, TextIgnored(FormValues{Text: "x", File: &Upload{Filename: "a.pdf"}}))
	assert.False(t, TextIgnored(FormValues{Text: "x"}))
	assert.False(t, TextIgnored(FormValues{File: &Upload{Filename: "a.pdf"}}))
}

func TestUserMessageAndStatus(t *testing.T) {
	cases := []struct {
		err    error
		kind   string
		msg    string
		status int
	}{
		{ErrNoInputProvided, "no_input", msgNoInput, http.StatusBadRequest},
		{fmt.Errorf("submit: %w", ErrSubmissionInFlight), "in_flight", msgInFlight, http.StatusConflict},
		{&NetworkError{Err: errors.New("dial tcp: refused")}, "network", msgNetwork, http.StatusBadGateway},
		{&MalformedResponseError{ContentType: "text/html"}, "malformed_response", msgMalformed, http.StatusBadGateway},
		{&ServiceError{StatusCode: 401, Message: "Invalid token"}, "service", "Invalid token", http.StatusUnauthorized},
		{&ServiceError{StatusCode: 500}, "service", DefaultServiceMessage, http.StatusBadGateway},
		{errors.New("boom"), "internal", msgUnknown, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, Kind(c.err), "%v", c.err)
		assert.Equal(t, c.msg, UserMessage(c.err), "%v", c.err)
		assert.Equal(t, c.status, HTTPStatus(c.err), "%v", c.err)
	}
	assert.Equal(t, "", Kind(nil))
}
