package rectab_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bjaus/rectab"
)

// --- Test types: discovered with explicit order ---

type film struct {
	id    int
	title string
	stock int
}

func (f film) GetFilmID() int { return f.id }
func (f film) GetTitle() string { return f.title }
func (f film) GetNumInStock() int { return f.stock }
func (film) Columns() []string { return []string{"filmID", "title", "numInStock"} }

// --- Test types: same fields, different type ---

type otherFilm struct{ film }

// --- Test types: employee report record ---

type employee struct {
	userID    int
	lastName  string
	birthDate time.Time
	timeStamp time.Time
	salary    float32
	x         float64
}

func (e employee) GetUserID() int { return e.userID }
func (e employee) GetLastName() string { return e.lastName }
func (e employee) GetBirthDate() time.Time { return e.birthDate }
func (e employee) GetTimeStamp() time.Time { return e.timeStamp }
func (e employee) GetSalary() float32 { return e.salary }
func (e employee) GetX() float64 { return e.x }
func (employee) Columns() []string {
	return []string{"userID", "lastName", "birthDate", "timeStamp", "salary", "x"}
}

// --- Test types: aligned ---

type alignedFilm struct{ film }

func (alignedFilm) Alignments() []rectab.Alignment {
	return []rectab.Alignment{rectab.AlignRight, rectab.AlignLeft, rectab.AlignCenter}
}

// --- Test types: declarations with pointer receivers ---

type pair struct{ a, b int }

func (p pair) GetA() int        { return p.a }
func (p pair) GetB() int        { return p.b }
func (*pair) Columns() []string { return []string{"b", "a"} }

type leftFilm struct{ film }

func (*leftFilm) Alignments() []rectab.Alignment {
	return []rectab.Alignment{rectab.AlignLeft, rectab.AlignLeft, rectab.AlignLeft}
}

type payment struct {
	id     int
	amount float64
}

func (*payment) Fields() []rectab.Field {
	return []rectab.Field{
		rectab.Column("paymentID", func(p *payment) int { return p.id }),
		rectab.Column("amount", func(p *payment) float64 { return p.amount }),
	}
}

// --- Test types: failing accessor ---

type brokenFilm struct{ film }

func (brokenFilm) GetRating() (string, error) { return "", errBrokenRating }

var errBrokenRating = errors.New("rating unavailable")

// --- Helpers ---

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

var employees = []employee{
	{12, "Jones", day("1970-06-28T00:00:00"), day("2024-01-01T10:15:30"), 5124.46, 123.456},
	{13, "May", day("1990-12-31T00:00:00"), day("2024-02-02T11:49:59"), 6254.38, 123456.789},
	{14, "Beethoven", day("1976-01-04T00:00:00"), day("2022-12-15T10:00:00"), 7124, 123456789.012},
	{122, "Carmichael", day("1999-12-31T00:00:00"), day("2023-12-31T23:59:59"), 1234.56, 0.012},
	{1234, "Kirkpatrick", day("1945-06-13T00:00:00"), day("2024-01-01T00:00:00"), 9999.99, 11.119},
	{1, "Xi", day("1956-07-14T00:00:00"), day("2024-01-01T10:15:30"), 12345.67, 1.234},
}

var employeeFormats = map[string]string{
	"birthDate": "2006-01-02",
	"timeStamp": "2006-01-02T15:04:05",
}

type errWriter struct{}

func (e *errWriter) Write([]byte) (int, error) {
	return 0, errWriteFailed
}

var errWriteFailed = errors.New("write failed")

// ============================================================
// Tests
// ============================================================

func TestRenderEmpty(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		formats map[string]string
	}{
		"nil formats":     {formats: nil},
		"empty formats":   {formats: map[string]string{}},
		"unused formats":  {formats: map[string]string{"title": "%q"}},
		"invalid formats": {formats: map[string]string{"filmID": "%d %d"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := rectab.Render[film](nil, tt.formats)
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestRenderLayout(t *testing.T) {
	t.Parallel()
	items := []film{
		{id: 1, title: "A", stock: 10},
		{id: 22, title: "BB", stock: 5},
	}
	out, err := rectab.Render(items, nil)
	require.NoError(t, err)

	want := strings.Join([]string{
		"filmID  title  numInStock",
		strings.Repeat("-", 25),
		"     1      A          10",
		"    22     BB           5",
	}, "\n")
	assert.Equal(t, want, out)
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestRenderGolden(t *testing.T) {
	t.Parallel()
	out, err := rectab.Render(employees, employeeFormats)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "employees", []byte(out))
}

func TestRenderDefaultNumberFormats(t *testing.T) {
	t.Parallel()
	out, err := rectab.Render(employees[:1], employeeFormats)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"12", "Jones", "1970-06-28", "2024-01-01T10:15:30", "5124.46", "123.46"}, strings.Fields(lines[2]))
}

func TestRenderFormatOverride(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		formats map[string]string
		want    string
	}{
		"by field name": {
			formats: map[string]string{"filmID": "#%03d"},
			want:    "#007",
		},
		"by accessor name": {
			formats: map[string]string{"GetFilmID": "id-%d"},
			want:    "id-7",
		},
		"field name wins": {
			formats: map[string]string{"filmID": "%x", "GetFilmID": "%o"},
			want:    "7",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := rectab.Render([]film{{id: 7, title: "T", stock: 1}}, tt.formats)
			require.NoError(t, err)
			lines := strings.Split(out, "\n")
			assert.Equal(t, tt.want, strings.Fields(lines[2])[0])
		})
	}
}

func TestRenderTypeMismatch(t *testing.T) {
	t.Parallel()
	items := []any{
		film{id: 1, title: "A", stock: 1},
		otherFilm{film{id: 2, title: "B", stock: 2}},
	}
	out, err := rectab.Render(items, nil)
	require.ErrorIs(t, err, rectab.ErrTypeMismatch)
	assert.Empty(t, out)
}

func TestRenderPointerVsValueMismatch(t *testing.T) {
	t.Parallel()
	items := []any{film{id: 1}, &film{id: 2}}
	_, err := rectab.Render(items, nil)
	require.ErrorIs(t, err, rectab.ErrTypeMismatch)
}

func TestRenderNilFirstEntity(t *testing.T) {
	t.Parallel()
	_, err := rectab.Render([]any{nil}, nil)
	require.ErrorIs(t, err, rectab.ErrTypeMismatch)
}

func TestRenderPointerEntities(t *testing.T) {
	t.Parallel()
	out, err := rectab.Render([]*film{{id: 1, title: "A", stock: 10}}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "filmID  title  numInStock\n"))
}

func TestRenderPointerEntitiesWithValueFielder(t *testing.T) {
	t.Parallel()
	out, err := rectab.Render([]*rental{{id: 7, customer: "Ada", amount: 4.99}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "rentalID  customer  amount\n--------------------------\n       7       Ada    4.99", out)
}

func TestRenderPointerReceiverDeclarations(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		render func() (string, error)
		want   string
	}{
		"columns": {
			render: func() (string, error) { return rectab.Render([]pair{{a: 1, b: 2}}, nil) },
			want:   "b  a\n----\n2  1",
		},
		"columns on pointers": {
			render: func() (string, error) { return rectab.Render([]*pair{{a: 1, b: 2}}, nil) },
			want:   "b  a\n----\n2  1",
		},
		"alignments": {
			render: func() (string, error) {
				return rectab.Render([]leftFilm{{film{id: 1, title: "A", stock: 10}}}, nil)
			},
			want: "filmID  title  numInStock\n-------------------------\n1       A      10        ",
		},
		"fields": {
			render: func() (string, error) {
				return rectab.Render([]payment{{id: 3, amount: 1.5}}, nil)
			},
			want: "paymentID  amount\n-----------------\n        3    1.50",
		},
		"fields on pointers": {
			render: func() (string, error) {
				return rectab.Render([]*payment{{id: 3, amount: 1.5}}, nil)
			},
			want: "paymentID  amount\n-----------------\n        3    1.50",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := tt.render()
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderAccessError(t *testing.T) {
	t.Parallel()
	_, err := rectab.Render([]brokenFilm{{film{id: 1}}}, nil, rectab.WithColumns("filmID", "rating"))
	require.ErrorIs(t, err, rectab.ErrAccessInvocation)
	assert.ErrorIs(t, err, errBrokenRating)
}

func TestRenderFormatError(t *testing.T) {
	t.Parallel()
	_, err := rectab.Render([]film{{id: 1, title: "A"}}, map[string]string{"title": "%d"})
	require.ErrorIs(t, err, rectab.ErrFormat)
	assert.Contains(t, err.Error(), "title")
}

func TestRenderUnknownColumn(t *testing.T) {
	t.Parallel()
	_, err := rectab.Render([]film{{id: 1}}, nil, rectab.WithColumns("filmID", "director"))
	require.ErrorIs(t, err, rectab.ErrUnknownColumn)
	assert.Contains(t, err.Error(), "director")
}

func TestRenderWithColumns(t *testing.T) {
	t.Parallel()
	out, err := rectab.Render([]film{{id: 1, title: "A", stock: 10}}, nil, rectab.WithColumns("title", "filmID"))
	require.NoError(t, err)
	assert.Equal(t, "title  filmID\n-------------\n    A       1", out)
}

func TestRenderAligned(t *testing.T) {
	t.Parallel()
	items := []alignedFilm{
		{film{id: 1, title: "A", stock: 10}},
		{film{id: 22, title: "BB", stock: 5}},
	}
	out, err := rectab.Render(items, nil)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "     1  A          10    ", lines[2])
	assert.Equal(t, "    22  BB         5     ", lines[3])
}

func TestRenderWideCharacters(t *testing.T) {
	t.Parallel()
	out, err := rectab.Render([]film{{id: 1, title: "你好", stock: 1}}, nil)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	// "你好" is four columns wide, one short of the "title" header.
	assert.Equal(t, "filmID  title  numInStock", lines[0])
	assert.Equal(t, "     1   你好           1", lines[2])
}

func TestRenderIdempotent(t *testing.T) {
	t.Parallel()
	first, err := rectab.Render(employees, employeeFormats)
	require.NoError(t, err)
	second, err := rectab.Render(employees, employeeFormats)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderConcurrent(t *testing.T) {
	t.Parallel()
	want, err := rectab.Render(employees, employeeFormats)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = rectab.Render(employees, employeeFormats)
		}()
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestRenderLogsDebugEntries(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := rectab.Render([]film{{id: 1}}, nil, rectab.WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, 3, logs.FilterMessage("field resolved").Len())
	built := logs.FilterMessage("schema built").All()
	require.Len(t, built, 1)
	assert.Equal(t, true, built[0].ContextMap()["explicit"])
	assert.Equal(t, 1, logs.FilterMessage("table rendered").Len())
}

// --- Write ---

func TestWrite(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := rectab.Write(&buf, []film{{id: 1, title: "A", stock: 10}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "filmID  title  numInStock\n-------------------------\n     1      A          10", buf.String())
}

func TestWriteEmpty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := rectab.Write[film](&buf, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestWriteNoPartialOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	items := []any{film{id: 1}, otherFilm{}}
	err := rectab.Write(&buf, items, nil)
	require.ErrorIs(t, err, rectab.ErrTypeMismatch)
	assert.Empty(t, buf.String())
}

func TestWriteError(t *testing.T) {
	t.Parallel()
	err := rectab.Write(&errWriter{}, []film{{id: 1}}, nil)
	require.ErrorIs(t, err, errWriteFailed)
}
