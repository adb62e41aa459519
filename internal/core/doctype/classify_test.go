package doctype

import (
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestClassifySimple(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Category
	}{
		{name: "japanese receipt", filename: "レシート_20240127.jpg", want: Receipt},
		{name: "delivery slip", filename: "搬入書_20240127.jpg", want: DeliverySlip},
		{name: "floor plan", filename: "平面図_A棟.dwg", want: Drawing},
		{name: "no keyword", filename: "不明なファイル.txt", want: Unknown},
		{name: "receipt beats drawing", filename: "領収書_図面.pdf", want: Receipt},
		{name: "upper case english", filename: "RECEIPT_001.JPG", want: Receipt},
		{name: "mixed case drawing", filename: "Drawing_Plan.DWG", want: Drawing},
		{name: "contract", filename: "工事請負契約書.pdf", want: Contract},
		{name: "spec", filename: "特記仕様書_v2.docx", want: Spec},
		{name: "invoice", filename: "請求書_2024-01.xlsx", want: Invoice},
		{name: "invoice before photo", filename: "invoice_scan.jpg", want: Invoice},
		{name: "photo by extension", filename: "IMG0001.HEIC", want: Photo},
		{name: "photo keyword without image extension", filename: "写真_001.pdf", want: Unknown},
		{name: "photo extension must be a suffix", filename: "site.png.bak", want: Unknown},
		{name: "empty", filename: "", want: Unknown},
		{name: "whitespace", filename: "   ", want: Unknown},
		{name: "symbols", filename: "!@#$%^&*()_+{}|:<>?~`", want: Unknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySimple(tc.filename))
		})
	}
}

func TestClassifyDetailedEmptyInput(t *testing.T) {
	got := ClassifyDetailed("")
	want := Result{Category: Unknown, Confidence: 0, MatchedKeywords: []string{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ClassifyDetailed(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyDetailedMoreEvidenceRaisesConfidence(t *testing.T) {
	strong := ClassifyDetailed("レシート_receipt_領収書.jpg")
	weak := ClassifyDetailed("レシート.jpg")

	require.Equal(t, Receipt, strong.Category)
	require.Equal(t, Receipt, weak.Category)
	assert.Greater(t, strong.Confidence, weak.Confidence)
	assert.InDelta(t, 0.54, strong.Confidence, 1e-9)
	assert.InDelta(t, 0.18, weak.Confidence, 1e-9)
	assert.Equal(t, []string{"レシート", "領収書", "receipt", ".jpg"}, strong.MatchedKeywords)
}

func TestClassifyDetailedCollectsEvidenceFromEveryCategory(t *testing.T) {
	got := ClassifyDetailed("RECEIPT_001.JPG")

	assert.Equal(t, Receipt, got.Category)
	assert.Equal(t, []string{"receipt", ".jpg"}, got.MatchedKeywords)
}

func TestClassifyDetailedTieKeepsEarlierCategory(t *testing.T) {
	got := ClassifyDetailed("receipt_invoice.pdf")

	assert.Equal(t, Receipt, got.Category)
	assert.InDelta(t, 0.18, got.Confidence, 1e-9)
	assert.Equal(t, []string{"receipt", "invoice"}, got.MatchedKeywords)
}

func TestClassifyEntryPointsDisagreeOnAmbiguousNames(t *testing.T) {
	tests := []struct {
		filename     string
		wantSimple   Category
		wantDetailed Category
	}{
		{filename: "invoice_請求書_請求_receipt.pdf", wantSimple: Receipt, wantDetailed: Invoice},
		{filename: "写真_001.pdf", wantSimple: Unknown, wantDetailed: Photo},
		{filename: "現場写真_搬入.png", wantSimple: DeliverySlip, wantDetailed: DeliverySlip},
	}

	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			assert.Equal(t, tc.wantSimple, ClassifySimple(tc.filename))
			assert.Equal(t, tc.wantDetailed, ClassifyDetailed(tc.filename).Category)
		})
	}
}

func TestClassifyLongInput(t *testing.T) {
	filename := "領収書" + strings.Repeat("x", 1000) + ".pdf"

	assert.Equal(t, Receipt, ClassifySimple(filename))
	got := ClassifyDetailed(filename)
	assert.Equal(t, Receipt, got.Category)
	assert.Equal(t, []string{"領収書"}, got.MatchedKeywords)
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	pairs := [][2]string{
		{"RECEIPT_001.JPG", "receipt_001.jpg"},
		{"Drawing_Plan.DWG", "drawing_plan.dwg"},
		{"INVOICE-March.PDF", "invoice-march.pdf"},
		{"Photo.HEIC", "photo.heic"},
	}
	for _, p := range pairs {
		assert.Equal(t, ClassifySimple(p[1]), ClassifySimple(p[0]), p[0])
		assert.Equal(t, ClassifyDetailed(p[1]), ClassifyDetailed(p[0]), p[0])
	}
}

func TestClassifyInvariants(t *testing.T) {
	for _, s := range invariantCorpus() {
		simple := ClassifySimple(s)
		assert.True(t, simple.Valid(), "ClassifySimple(%q) = %q", s, simple)

		got := ClassifyDetailed(s)
		assert.True(t, got.Category.Valid(), "category %q", got.Category)
		assert.GreaterOrEqual(t, got.Confidence, 0.0, s)
		assert.LessOrEqual(t, got.Confidence, 1.0, s)
		assert.Equal(t, got.Category == Unknown, got.Confidence == 0, "unknown iff zero confidence for %q", s)
		assert.NotNil(t, got.MatchedKeywords, s)

		lower := strings.ToLower(s)
		for _, kw := range got.MatchedKeywords {
			assert.Contains(t, lower, kw, "keyword %q reported for %q", kw, s)
		}

		assert.Equal(t, simple, ClassifySimple(s), "idempotent simple %q", s)
		assert.Equal(t, got, ClassifyDetailed(s), "idempotent detailed %q", s)
	}
}

func TestKeywordTablesAreLowerCase(t *testing.T) {
	for _, rule := range keywordRules {
		assert.Greater(t, rule.weight, 0.0, rule.category)
		assert.LessOrEqual(t, rule.weight, 1.0, rule.category)
		require.NotEmpty(t, rule.keywords, rule.category)
		for _, kw := range rule.keywords {
			assert.Equal(t, strings.ToLower(kw), kw, "%s keyword %q", rule.category, kw)
		}
	}
	for _, c := range simpleOrder {
		require.Contains(t, rulesByCategory, c)
	}
}

func TestClassifyConcurrentCallers(t *testing.T) {
	defer goleak.VerifyNone(t)

	corpus := invariantCorpus()
	want := make([]Result, len(corpus))
	for i, s := range corpus {
		want[i] = ClassifyDetailed(s)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16*len(corpus))
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, s := range corpus {
				if !cmp.Equal(want[i], ClassifyDetailed(s)) {
					errs <- s
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for s := range errs {
		t.Errorf("concurrent ClassifyDetailed(%q) diverged", s)
	}
}

func BenchmarkClassifyDetailed(b *testing.B) {
	filename := "2024-01-27_現場写真_平面図_領収書_receipt_" + strings.Repeat("a", 200) + ".jpg"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ClassifyDetailed(filename)
	}
}

func invariantCorpus() []string {
	corpus := []string{
		"",
		"   ",
		"\t\n",
		".",
		"..",
		"レシート_20240127.jpg",
		"搬入書_20240127.jpg",
		"平面図_A棟.dwg",
		"不明なファイル.txt",
		"レシート_receipt_領収書.jpg",
		"領収書_図面.pdf",
		"İSTANBUL_RECEIPT.PNG",
		"\x00\x01receipt\x7f",
		"\xff\xfe invalid utf8 invoice",
		strings.Repeat("図面", 500),
	}

	var fragments []string
	for _, rule := range keywordRules {
		fragments = append(fragments, rule.keywords...)
	}
	fragments = append(fragments, "_", "-", " ", "2024", "A棟", ".PDF", ".Jpg", "Ω", "ß")

	rng := rand.New(rand.NewSource(20240127))
	for i := 0; i < 300; i++ {
		var b strings.Builder
		n := rng.Intn(6)
		for j := 0; j < n; j++ {
			frag := fragments[rng.Intn(len(fragments))]
			if rng.Intn(3) == 0 {
				frag = strings.ToUpper(frag)
			}
			b.WriteString(frag)
		}
		corpus = append(corpus, b.String())
	}
	return corpus
}
