package repair_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/openkraft/encmend/internal/domain/charset"
	"github.com/openkraft/encmend/internal/domain/repair"
)

const fffd = "\uFFFD"

func newEngine(t *testing.T, entries []domain.DictionaryEntry, ctx domain.ContextualConfig) *repair.Engine {
	t.Helper()
	reg, err := charset.NewRegistry(domain.DefaultCandidates)
	require.NoError(t, err)
	dict, err := domain.NewRepairDictionary("test", entries)
	require.NoError(t, err)
	e, err := repair.NewEngine(reg, dict, ctx)
	require.NoError(t, err)
	return e
}

func contextual() domain.ContextualConfig {
	cfg := domain.DefaultConfig().Contextual
	cfg.Enabled = true
	cfg.DefaultChar = "射"
	return cfg
}

func declaration(e *repair.Engine, data []byte, actual string) ([]byte, domain.FixResult) {
	return e.Fix(repair.Request{
		Path:           "mapper/A.xml",
		Data:           data,
		ActualEncoding: actual,
		Strategies:     []domain.Strategy{domain.StrategyDeclaration},
	})
}

func TestDeclaration_RewritesGBKDeclarationKeepsBody(t *testing.T) {
	e := newEngine(t, nil, domain.ContextualConfig{})
	body := "\n<mapper namespace=\"demo\">\n  <!-- 结果映射 -->\n</mapper>\n"
	in := []byte(`<?xml version="1.0" encoding="GBK"?>` + body)

	out, res := declaration(e, in, "UTF-8")

	assert.True(t, res.Success)
	assert.True(t, res.Changed)
	assert.Equal(t, "UTF-8", res.NewEncoding)
	assert.Equal(t, "A.xml", res.FileName)
	assert.Equal(t, domain.CanonicalDeclaration+body, string(out))
}

func TestDeclaration_StripsBOM(t *testing.T) {
	e := newEngine(t, nil, domain.ContextualConfig{})
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte(domain.CanonicalDeclaration+"\n<a/>")...)

	out, res := declaration(e, in, "UTF-8")

	assert.True(t, res.Changed)
	assert.True(t, strings.HasPrefix(string(out), "<?xml"))
	assert.False(t, charset.HasBOM(out))
	assert.Contains(t, res.Message, "BOM removed")
}

func TestDeclaration_Idempotent(t *testing.T) {
	e := newEngine(t, nil, domain.ContextualConfig{})
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<?xml version='1.0' encoding='gbk'?>\n<a/>")...)

	first, _ := declaration(e, in, "UTF-8")
	second, res := declaration(e, first, "UTF-8")

	assert.Equal(t, first, second)
	assert.False(t, res.Changed)
	assert.Equal(t, 1, strings.Count(string(second), "<?xml"))
}

func TestDeclaration_ReencodesGBK(t *testing.T) {
	e := newEngine(t, nil, domain.ContextualConfig{})
	src := "<?xml version=\"1.0\" encoding=\"GBK\"?>\n<a>结果映射</a>"
	gbk, err := simplifiedchinese.GBK.NewEncoder().String(src)
	require.NoError(t, err)

	out, res := declaration(e, []byte(gbk), "GBK")

	require.True(t, res.Success)
	assert.Equal(t, "GBK", res.OriginalEncoding)
	assert.Equal(t, domain.CanonicalDeclaration+"\n<a>结果映射</a>", string(out))
}

func TestDeclaration_PrependsWhenMissing(t *testing.T) {
	e := newEngine(t, nil, domain.ContextualConfig{})
	out, res := declaration(e, []byte("<a/>"), "UTF-8")
	assert.True(t, res.Changed)
	assert.Equal(t, domain.CanonicalDeclaration+"\n<a/>", string(out))
}

func TestDeclaration_SkipsUnknownEncoding(t *testing.T) {
	e := newEngine(t, nil, domain.ContextualConfig{})
	in := []byte{0xFF, 0xFF, 0xFF}

	out, res := declaration(e, in, domain.EncodingUnknown)

	assert.False(t, res.Success)
	assert.False(t, res.Changed)
	assert.True(t, res.NeedsManualReview)
	assert.Equal(t, in, out)
}

func TestDeclaration_RefusesLossyDecode(t *testing.T) {
	e := newEngine(t, nil, domain.ContextualConfig{})
	in := []byte("<?xml version=\"1.0\" encoding=\"GBK\"?>\n<a>\xFF</a>")

	out, res := declaration(e, in, "UTF-8")

	assert.False(t, res.Success)
	assert.True(t, res.NeedsManualReview)
	assert.Equal(t, "UTF-8", res.NewEncoding)
	assert.Contains(t, res.Message, "would rise")
	assert.Equal(t, in, out)
}

func TestDictionary_LongestMatchFirst(t *testing.T) {
	e := newEngine(t, []domain.DictionaryEntry{
		{Pattern: "a" + fffd, Replacement: "X"},
		{Pattern: "a" + fffd + "c", Replacement: "Y"},
	}, domain.ContextualConfig{})

	out, res := e.Fix(repair.Request{
		Path:       "x.xml",
		Data:       []byte("a" + fffd + "c"),
		Strategies: []domain.Strategy{domain.StrategyDictionary},
	})

	assert.Equal(t, "Y", string(out))
	assert.Equal(t, 1, res.FixedCount)
	require.Len(t, res.Substitutions, 1)
	assert.Equal(t, "Y", res.Substitutions[0].Replacement)
}

func TestDictionary_RestoresPhrase(t *testing.T) {
	e := newEngine(t, []domain.DictionaryEntry{
		{Pattern: "结果映" + fffd, Replacement: "结果映射"},
	}, domain.ContextualConfig{})
	in := "<a><!-- 结果映" + fffd + " --><b>" + fffd + fffd + "</b></a>"

	out, res := e.Fix(repair.Request{
		Path:       "C.xml",
		Data:       []byte(in),
		Strategies: []domain.Strategy{domain.StrategyDictionary},
	})

	assert.Contains(t, string(out), "结果映射")
	assert.Equal(t, 3, res.OriginalReplacementCount)
	assert.Equal(t, 2, res.FinalReplacementCount)
	assert.Equal(t, 1, res.FixedCount)
	assert.True(t, res.Changed)
	assert.True(t, res.NeedsManualReview)
}

func TestDictionary_NoMatchLeavesBytesUntouched(t *testing.T) {
	e := newEngine(t, []domain.DictionaryEntry{
		{Pattern: "结果映" + fffd, Replacement: "结果映射"},
	}, domain.ContextualConfig{})
	in := []byte("<a>" + fffd + "</a>")

	out, res := e.Fix(repair.Request{
		Path:       "x.xml",
		Data:       in,
		Strategies: []domain.Strategy{domain.StrategyDictionary},
	})

	assert.Equal(t, in, out)
	assert.False(t, res.Changed)
	assert.Equal(t, 0, res.FixedCount)
	assert.True(t, res.NeedsManualReview)
}

func TestDictionary_CleanFileNeedsNothing(t *testing.T) {
	e := newEngine(t, nil, domain.ContextualConfig{})
	_, res := e.Fix(repair.Request{
		Path:       "x.xml",
		Data:       []byte("<a/>"),
		Strategies: []domain.Strategy{domain.StrategyDictionary},
	})
	assert.True(t, res.Success)
	assert.False(t, res.NeedsManualReview)
	assert.False(t, res.Changed)
}

func TestFix_DictionaryThenContextual(t *testing.T) {
	e := newEngine(t, []domain.DictionaryEntry{
		{Pattern: "结果映" + fffd, Replacement: "结果映射"},
		{Pattern: "查询" + fffd, Replacement: "查询"},
	}, contextual())

	in := strings.Join([]string{
		domain.CanonicalDeclaration,
		`<mapper namespace="demo">`,
		"  <!-- 结果映" + fffd + " -->",
		`  <resultMap id="base" type="Row">`,
		"    <!-- 查询" + fffd + "列表 -->",
		`    <result property="` + fffd + `name" column="name"/>`,
		`  </resultMap>`,
		"  <!-- 结果映" + fffd + " -->",
		`  <select id="find">SELECT name` + fffd + ` FROM t</select>`,
		`</mapper>`,
	}, "\n")

	out, res := e.Fix(repair.Request{
		Path:       "D.xml",
		Data:       []byte(in),
		Strategies: []domain.Strategy{domain.StrategyDictionary, domain.StrategyContextual},
	})

	assert.Equal(t, 5, res.OriginalReplacementCount)
	assert.Equal(t, 4, res.FixedCount)
	assert.Equal(t, 1, res.FinalReplacementCount)
	assert.True(t, res.NeedsManualReview)
	assert.Contains(t, string(out), "SELECT name射 FROM t")
	assert.Contains(t, string(out), `property="`+fffd+`name"`)

	byStrategy := map[domain.Strategy]int{}
	for _, s := range res.Substitutions {
		byStrategy[s.Strategy] += s.Count
	}
	assert.Equal(t, 3, byStrategy[domain.StrategyDictionary])
	assert.Equal(t, 1, byStrategy[domain.StrategyContextual])
}

func TestFix_UnregisteredStrategy(t *testing.T) {
	e := newEngine(t, nil, domain.ContextualConfig{})
	assert.False(t, e.Supports(domain.StrategyContextual))

	in := []byte("<a>" + fffd + "</a>")
	out, res := e.Fix(repair.Request{
		Path:       "x.xml",
		Data:       in,
		Strategies: []domain.Strategy{domain.StrategyContextual},
	})
	assert.False(t, res.Success)
	assert.Equal(t, in, out)
}

func TestNewEngine_RequiresRegistry(t *testing.T) {
	_, err := repair.NewEngine(nil, nil, domain.ContextualConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
