package doctype

// keywordRule lists the lower-case substrings that signal a category.
// Keywords must stay lower-case: matching runs against the lower-cased
// filename and matched keywords are reported verbatim.
type keywordRule struct {
	category Category
	keywords []string
	weight   float64
}

// keywordRules is in table order. ClassifyDetailed keeps the earlier rule
// on equal scores.
var keywordRules = []keywordRule{
	{
		category: Receipt,
		keywords: []string{"レシート", "領収書", "領収証", "receipt", "ryoshusho"},
		weight:   0.9,
	},
	{
		category: DeliverySlip,
		keywords: []string{"搬入", "納品書", "納品", "送り状", "delivery", "slip", "nohinsho"},
		weight:   0.85,
	},
	{
		category: Contract,
		keywords: []string{"契約書", "契約", "約款", "覚書", "contract", "agreement", "keiyaku"},
		weight:   0.9,
	},
	{
		category: Drawing,
		keywords: []string{"図面", "平面図", "立面図", "断面図", "詳細図", "drawing", "plan", ".dwg", ".dxf", "zumen"},
		weight:   0.85,
	},
	{
		category: Spec,
		keywords: []string{"仕様書", "仕様", "特記", "spec", "specification", "shiyosho"},
		weight:   0.8,
	},
	{
		category: Photo,
		keywords: []string{"写真", "画像", "photo", "img", "pic", ".jpg", ".jpeg", ".png", ".heic", ".webp", ".bmp"},
		weight:   0.6,
	},
	{
		category: Invoice,
		keywords: []string{"請求書", "請求", "invoice", "bill", "seikyusho"},
		weight:   0.9,
	},
}

// simpleOrder is the first-match priority used by ClassifySimple. Photo is
// absent: it is decided by extension after every keyword rule misses.
var simpleOrder = []Category{
	Receipt,
	DeliverySlip,
	Contract,
	Drawing,
	Spec,
	Invoice,
}

var photoExtensions = []string{".jpg", ".jpeg", ".png", ".heic", ".webp", ".bmp"}

var rulesByCategory = func() map[Category]*keywordRule {
	out := make(map[Category]*keywordRule, len(keywordRules))
	for i := range keywordRules {
		out[keywordRules[i].category] = &keywordRules[i]
	}
	return out
}()
