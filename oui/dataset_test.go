package oui_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ipastusi/macsql/mac"
	"github.com/ipastusi/macsql/oui"
)

func Test_ParseDataset(t *testing.T) {
	t.Parallel()

	dataset := strings.Join([]string{
		"# header",
		"",
		"00:00:17\tOracle",
		"08:00:87\tXyplexTe\tXyplex\t# terminal servers",
		"  2C-23-3A\tHewlettP\tHewlett Packard  ",
		"8C:1C:DA:80:00:00/28\tAtol\tAtol Llc",
		"8C:1F:64:CB:20:00/36\tDyncirSo",
		"00:50:C2:00:00:00/24\tIEEERegi\t\tIEEE Registration Authority",
		"8C:1C:DA/28\tAtol",
		"00:1B:C5:0B:50:00/40\tPlugable\tPlugable Technologies",
		"00:55:DA:00:00:01/48\tSingle",
		"8C:1C:DA:88:00:00/28\tAtol",
	}, "\n")

	records, err := oui.ParseDataset(strings.NewReader(dataset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []oui.Record{
		{Prefix: oui.Prefix{Addr: mac.MustParse("00:00:17:00:00:00"), Bits: 24}, Short: "Oracle"},
		{Prefix: oui.Prefix{Addr: mac.MustParse("08:00:87:00:00:00"), Bits: 24}, Short: "XyplexTe", Long: "Xyplex", Comment: "terminal servers"},
		{Prefix: oui.Prefix{Addr: mac.MustParse("2c:23:3a:00:00:00"), Bits: 24}, Short: "HewlettP", Long: "Hewlett Packard"},
		{Prefix: oui.Prefix{Addr: mac.MustParse("8c:1c:da:80:00:00"), Bits: 28}, Short: "Atol", Long: "Atol Llc"},
		{Prefix: oui.Prefix{Addr: mac.MustParse("8c:1f:64:cb:20:00"), Bits: 36}, Short: "DyncirSo"},
		{Prefix: oui.Prefix{Addr: mac.MustParse("00:50:c2:00:00:00"), Bits: 24}, Short: "IEEERegi", Long: "IEEE Registration Authority"},
		{Prefix: oui.Prefix{Addr: mac.MustParse("8c:1c:da:00:00:00"), Bits: 28}, Short: "Atol"},
		{Prefix: oui.Prefix{Addr: mac.MustParse("00:1b:c5:0b:50:00"), Bits: 40}, Short: "Plugable", Long: "Plugable Technologies"},
		{Prefix: oui.Prefix{Addr: mac.MustParse("00:55:da:00:00:01"), Bits: 48}, Short: "Single"},
		{Prefix: oui.Prefix{Addr: mac.MustParse("8c:1c:da:88:00:00"), Bits: 28}, Short: "Atol"},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Fatalf("unexpected records (-expected +actual):\n%s", diff)
	}
}

func Test_ParseDatasetInvalid(t *testing.T) {
	t.Parallel()

	inputs := map[string]struct {
		line        string
		expectedErr error
	}{
		"prefix only":     {"3C:A6:F6", oui.ErrFieldCount},
		"too many fields": {"3C:A6:F6\tApple\tApple, Inc.\textra", oui.ErrFieldCount},
		"bad prefix":      {"3C:A6:G6\tApple", oui.ErrPrefix},
		"short prefix":    {"3C:A6\tApple", oui.ErrPrefix},
		"/23":             {"8C:1C:DA:80:00:00/23\tAtol", oui.ErrPrefixLength},
		"/49":             {"8C:1C:DA:80:00:00/49\tAtol", oui.ErrPrefixLength},
		"negative length": {"8C:1C:DA:80:00:00/-24\tAtol", oui.ErrPrefixLength},
		"bad length":      {"8C:1C:DA:80:00:00/x\tAtol", oui.ErrPrefixLength},
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := oui.ParseDataset(strings.NewReader("# header\n" + in.line + "\n"))
			if !errors.Is(err, in.expectedErr) {
				t.Fatalf("unexpected error, expected: %v, actual: %v", in.expectedErr, err)
			}
			var datasetErr *oui.DatasetError
			if !errors.As(err, &datasetErr) {
				t.Fatalf("expected *oui.DatasetError, got %T", err)
			}
			if datasetErr.Line != 2 {
				t.Fatalf("unexpected line, expected: 2, actual: %v", datasetErr.Line)
			}
		})
	}
}
