package rowsource

import (
	"os"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/founder-resolve/internal/founder"
)

// Record fields a column can map to.
const (
	FieldName        = "name"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldEmail       = "email"
	FieldLinkedIn    = "linkedin_url"
	FieldTitle       = "title"
	FieldBio         = "bio"
	FieldLocation    = "location"
	FieldEducation   = "education"
	FieldExperience  = "experience"
	FieldSkills      = "skills"
	FieldTwitter     = "twitter"
	FieldGitHub      = "github"
	FieldWebsite     = "website"
	FieldCompanyName = "company_name"
	FieldCompanyRole = "company_role"
)

var knownFields = map[string]bool{
	FieldName: true, FieldFirstName: true, FieldLastName: true, FieldEmail: true,
	FieldLinkedIn: true, FieldTitle: true, FieldBio: true, FieldLocation: true,
	FieldEducation: true, FieldExperience: true, FieldSkills: true,
	FieldTwitter: true, FieldGitHub: true, FieldWebsite: true,
	FieldCompanyName: true, FieldCompanyRole: true,
}

// defaultAliases maps folded header names to record fields.
var defaultAliases = map[string]string{
	"name": FieldName, "fullname": FieldName, "foundername": FieldName, "person": FieldName,
	"firstname": FieldFirstName, "givenname": FieldFirstName,
	"lastname": FieldLastName, "surname": FieldLastName, "familyname": FieldLastName,
	"email": FieldEmail, "emailaddress": FieldEmail, "workemail": FieldEmail,
	"linkedin": FieldLinkedIn, "linkedinurl": FieldLinkedIn, "linkedinprofile": FieldLinkedIn,
	"title": FieldTitle, "jobtitle": FieldTitle, "position": FieldTitle,
	"bio": FieldBio, "about": FieldBio, "summary": FieldBio,
	"location": FieldLocation, "city": FieldLocation,
	"education": FieldEducation, "school": FieldEducation,
	"experience": FieldExperience,
	"skills": FieldSkills, "expertise": FieldSkills,
	"twitter": FieldTwitter, "twitterhandle": FieldTwitter, "x": FieldTwitter,
	"github": FieldGitHub, "githuburl": FieldGitHub,
	"website": FieldWebsite, "url": FieldWebsite, "personalwebsite": FieldWebsite,
	"company": FieldCompanyName, "companyname": FieldCompanyName, "organization": FieldCompanyName,
	"role": FieldCompanyRole, "companyrole": FieldCompanyRole,
}

// Mapping resolves sheet headers to record fields. Header matching ignores
// case, spaces and punctuation.
type Mapping struct {
	aliases map[string]string
}

// mappingFile is the YAML layout of a mapping override file:
//
//	columns:
//	  "Founder Full Name": name
//	  "Startup": company_name
type mappingFile struct {
	Columns map[string]string `yaml:"columns"`
}

// DefaultMapping returns the built-in alias table.
func DefaultMapping() *Mapping {
	m := &Mapping{aliases: make(map[string]string, len(defaultAliases))}
	for k, v := range defaultAliases {
		m.aliases[k] = v
	}
	return m
}

// Set maps header to field, replacing any existing alias.
func (m *Mapping) Set(header, field string) error {
	field = strings.ToLower(strings.TrimSpace(field))
	if !knownFields[field] {
		return eris.Errorf("rowsource: unknown field %q for column %q", field, header)
	}
	m.aliases[foldHeader(header)] = field
	return nil
}

// LoadMapping reads a YAML mapping file and layers it over the defaults.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rowsource: read mapping %s", path)
	}
	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, eris.Wrapf(err, "rowsource: parse mapping %s", path)
	}
	m := DefaultMapping()
	for header, field := range mf.Columns {
		if err := m.Set(header, field); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Field returns the record field header maps to, or "".
func (m *Mapping) Field(header string) string {
	return m.aliases[foldHeader(header)]
}

func foldHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Records builds one record per non-blank row. Rows without a name are
// kept so they surface as validation errors downstream.
func (t *Table) Records(m *Mapping) []founder.Record {
	fields := make([]string, len(t.Header))
	for i, h := range t.Header {
		fields[i] = m.Field(h)
	}

	out := make([]founder.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		if blank(row) {
			continue
		}
		var rec founder.Record
		var first, last string
		for i, v := range row {
			if i >= len(fields) {
				break
			}
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			switch fields[i] {
			case FieldName:
				rec.Name = v
			case FieldFirstName:
				first = v
			case FieldLastName:
				last = v
			case FieldEmail:
				rec.Email = v
			case FieldLinkedIn:
				rec.LinkedInURL = v
			case FieldTitle:
				rec.Title = v
			case FieldBio:
				rec.Bio = v
			case FieldLocation:
				rec.Location = v
			case FieldEducation:
				rec.Education = v
			case FieldExperience:
				rec.Experience = v
			case FieldSkills:
				rec.Skills = splitSkills(v)
			case FieldTwitter:
				rec.Twitter = v
			case FieldGitHub:
				rec.GitHub = v
			case FieldWebsite:
				rec.Website = v
			case FieldCompanyName:
				rec.CompanyName = v
			case FieldCompanyRole:
				rec.CompanyRole = v
			}
		}
		if rec.Name == "" {
			rec.Name = strings.TrimSpace(first + " " + last)
		}
		out = append(out, rec)
	}
	return out
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func splitSkills(v string) []string {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
