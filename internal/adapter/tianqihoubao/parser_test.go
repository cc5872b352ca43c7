package tianqihoubao

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/weather-history-etl/internal/domain"
)

// monthPage is a trimmed monthly history page: one header row, two valid
// rows, one row with only three cells, and one row with a bad date cell.
// Cells carry internal newlines the way the real site does.
const monthPage = `<html><head><title>深圳2024年4月份天气</title></head><body>
<div class="wdetail">
<h1>深圳2024年4月份天气查询</h1>
<table class="b">
<tr><td>日期</td><td>天气状况</td><td>气温</td><td>风力风向</td></tr>
<tr>
<td>2024年4月25日</td>
<td>多云
/晴</td>
<td>28℃ /
21℃</td>
<td>无持续风向 1-2级
/无持续风向 1-2级</td>
</tr>
<tr>
<td>2024年4月26日</td>
<td>晴 /多云</td>
<td>29℃ / 22℃</td>
<td>东南风 3-4级 /微风</td>
</tr>
<tr><td>残缺行</td><td>晴 /晴</td><td>30℃</td></tr>
<tr><td>不是日期</td><td>晴 /晴</td><td>30℃ / 23℃</td><td>微风 /微风</td></tr>
</table>
</div>
</body></html>`

func testParser(t *testing.T) *Parser {
	t.Helper()
	return NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParser_ParseMonth(t *testing.T) {
	p := testParser(t)

	records, err := p.ParseMonth(domain.FetchResult{Body: []byte(monthPage), Charset: "UTF-8"})
	require.NoError(t, err)
	require.Len(t, records, 2, "malformed rows must be skipped, not fatal")

	first := records[0]
	assert.Equal(t, time.Date(2024, time.April, 25, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "多云 /晴", first.WeatherDayNight)
	assert.Equal(t, "28℃", first.HighTemp)
	assert.Equal(t, "21℃", first.LowTemp)
	assert.Equal(t, "无持续风向 1-2级", first.WindDay)
	assert.Equal(t, "无持续风向 1-2级", first.WindNight)

	second := records[1]
	assert.Equal(t, time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC), second.Date)
	assert.Equal(t, "东南风 3-4级", second.WindDay)
	assert.Equal(t, "微风", second.WindNight)
}

func TestParser_ParseMonth_GB18030(t *testing.T) {
	encoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewEncoder(), []byte(monthPage))
	require.NoError(t, err)

	p := testParser(t)
	records, err := p.ParseMonth(domain.FetchResult{Body: encoded, Charset: "GB-18030"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "多云 /晴", records[0].WeatherDayNight)
}

func TestParser_ParseMonth_MissingStructure(t *testing.T) {
	p := testParser(t)

	t.Run("no container", func(t *testing.T) {
		records, err := p.ParseMonth(domain.FetchResult{
			Body:    []byte(`<html><body><p>维护中</p></body></html>`),
			Charset: "UTF-8",
		})
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("container without table", func(t *testing.T) {
		records, err := p.ParseMonth(domain.FetchResult{
			Body:    []byte(`<html><body><div class="wdetail"><p>暂无数据</p></div></body></html>`),
			Charset: "UTF-8",
		})
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("header row only", func(t *testing.T) {
		records, err := p.ParseMonth(domain.FetchResult{
			Body:    []byte(`<html><body><div class="wdetail"><table class="b"><tr><td>日期</td><td>天气</td><td>气温</td><td>风力</td></tr></table></div></body></html>`),
			Charset: "UTF-8",
		})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestParser_ParseMonth_UnknownCharset(t *testing.T) {
	p := testParser(t)
	_, err := p.ParseMonth(domain.FetchResult{Body: []byte(monthPage), Charset: "KLINGON-8"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported charset")
}

func TestLookupEncoding_DashedNames(t *testing.T) {
	// chardet reports "GB-18030"; the WHATWG label is "gb18030".
	enc, err := lookupEncoding("GB-18030")
	require.NoError(t, err)
	assert.NotNil(t, enc)

	enc, err = lookupEncoding("UTF-8")
	require.NoError(t, err)
	assert.NotNil(t, enc)
}

func TestCellTexts_CollapsesWhitespace(t *testing.T) {
	p := testParser(t)
	page := bytes.ReplaceAll([]byte(monthPage), []byte("28℃ /\n21℃"), []byte("  28℃\t/\n\n 21℃ "))

	records, err := p.ParseMonth(domain.FetchResult{Body: page, Charset: "UTF-8"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "28℃", records[0].HighTemp)
	assert.Equal(t, "21℃", records[0].LowTemp)
}
