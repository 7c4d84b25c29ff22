package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_EmptyDocumentIsClean(t *testing.T) {
	assert.Empty(t, Empty().Validate())
}

func TestValidate_ReportsJSONPaths(t *testing.T) {
	doc := Empty()
	doc.PersonalDetails.Email = "not-an-email"
	doc.Jobs = []Job{{
		JobTitle:  "Software Engineer",
		Employer:  "Acme",
		StartDate: "2021-01-01",
		EndDate:   "March 2023",
		City:      "Berlin",
	}}

	issues := doc.Validate()

	fields := make(map[string]string)
	for _, is := range issues {
		fields[is.Field] = is.Rule
	}
	assert.Equal(t, "email", fields["personalDetails.email"])
	assert.Equal(t, "datetime", fields["jobs[0].endDate"])
	assert.Len(t, issues, 2)
}

func TestValidate_CertificateRules(t *testing.T) {
	doc := Empty()
	doc.Certificates = []Certificate{{
		Name:          "CKA",
		IssueDate:     "2024-05-01",
		CredentialURL: "not a url",
	}}

	issues := doc.Validate()

	rules := make(map[string]string)
	for _, is := range issues {
		rules[is.Field] = is.Message
	}
	assert.Equal(t, "is required", rules["certificates[0].issuer"])
	assert.Equal(t, "must be a valid URL", rules["certificates[0].credentialUrl"])
}
