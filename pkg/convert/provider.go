package convert

import "strings"

// Provider describes how a test-management system names things inside its
// attachment envelopes: the display name recorded as conversion provenance,
// the key of the identity block in envelopes it owns, and the metadata keys
// that carry the owning asset's id and name.
type Provider struct {
	DisplayName   string
	IdentityBlock string
	IDKey         string
	NameKey       string
}

// The static provider table. Metadata keys outside this table are never
// remapped; they survive verbatim under originalMetadata.
var providers = map[string]Provider{
	"zephyr": {
		DisplayName:   "Zephyr",
		IdentityBlock: "test-case",
		IDKey:         "testCaseKey",
		NameKey:       "testCaseName",
	},
	"qtest": {
		DisplayName:   "qTest",
		IdentityBlock: "test-case",
		IDKey:         "testCaseId",
		NameKey:       "testCaseName",
	},
	"jira": {
		DisplayName:   "Jira",
		IdentityBlock: "issue",
		IDKey:         "issueKey",
		NameKey:       "summary",
	},
	"testrail": {
		DisplayName:   "TestRail",
		IdentityBlock: "test-case",
		IDKey:         "caseId",
		NameKey:       "title",
	},
	"azure-devops": {
		DisplayName:   "Azure DevOps",
		IdentityBlock: "work-item",
		IDKey:         "workItemId",
		NameKey:       "title",
	},
}

// LookupProvider resolves a provider by name, case-insensitively. Unknown
// providers get a generic profile so conversions between systems outside the
// table still carry provenance.
func LookupProvider(name string) Provider {
	if p, ok := providers[strings.ToLower(name)]; ok {
		return p
	}
	return Provider{
		DisplayName:   name,
		IdentityBlock: "test-case",
		IDKey:         "id",
		NameKey:       "name",
	}
}
