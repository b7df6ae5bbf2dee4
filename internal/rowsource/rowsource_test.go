package rowsource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/founder-resolve/internal/founder"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Founders")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "founders.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadCSV_Records(t *testing.T) {
	in := "\ufeffFull Name,E-mail Address,LinkedIn URL,Skills,Company,Unmapped\n" +
		"Amy Lee,amy@x.com,linkedin.com/in/amylee,\"Go, Rust; SQL\",Acme,zzz\n" +
		" , , , , \n" +
		",nobody@x.com\n" +
		"Bob Chen\n"

	tbl, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "Full Name", tbl.Header[0])

	recs := tbl.Records(DefaultMapping())
	require.Len(t, recs, 3)
	assert.Equal(t, founder.Record{
		Name:        "Amy Lee",
		Email:       "amy@x.com",
		LinkedInURL: "linkedin.com/in/amylee",
		Skills:      []string{"Go", "Rust", "SQL"},
		CompanyName: "Acme",
	}, recs[0])
	assert.Equal(t, "", recs[1].Name)
	assert.Equal(t, "nobody@x.com", recs[1].Email)
	assert.Equal(t, "Bob Chen", recs[2].Name)
}

func TestReadCSV_FirstAndLastName(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("First Name,Last Name,Title\nAda,Lovelace,CEO\n"))
	require.NoError(t, err)
	recs := tbl.Records(DefaultMapping())
	require.Len(t, recs, 1)
	assert.Equal(t, "Ada Lovelace", recs[0].Name)
	assert.Equal(t, "CEO", recs[0].Title)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestLoadMapping_Overrides(t *testing.T) {
	path := writeFile(t, "mapping.yaml", "columns:\n  \"Founder\": name\n  \"Startup\": company_name\n")
	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, FieldName, m.Field("founder"))
	assert.Equal(t, FieldCompanyName, m.Field("STARTUP"))
	assert.Equal(t, FieldEmail, m.Field("Email"), "defaults remain")
}

func TestLoadMapping_UnknownField(t *testing.T) {
	path := writeFile(t, "mapping.yaml", "columns:\n  Founder: nickname\n")
	_, err := LoadMapping(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestReadXLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Name", "Email", "Role"},
		{"Amy Lee", "amy@x.com", "CTO"},
	})
	recs, err := Load(path, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Amy Lee", recs[0].Name)
	assert.Equal(t, "CTO", recs[0].CompanyRole)
}

func TestReadXLSX_BadSheet(t *testing.T) {
	path := createTestXLSX(t, [][]string{{"Name"}})
	_, err := ReadXLSX(path, 3)
	require.Error(t, err)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "founders.json", `[{"name":"Amy Lee","email":"amy@x.com","skills":["Go"]}]`)
	recs, err := Load(path, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"Go"}, recs[0].Skills)
}

func TestOpen_Unsupported(t *testing.T) {
	_, err := Open("founders.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}
