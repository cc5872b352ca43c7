// Package domain models daily weather history scraped from tianqihoubao.com.
//
// # Data Source
//
// Historical weather pages live at
// http://www.tianqihoubao.com/lishi/{city}/month/{YYYYMM}.html, one page per
// city and calendar month. The city path segment is the pinyin slug of the
// city name (e.g. "shenzhen" for 深圳市); see the translit package. Pages are
// served in a legacy Chinese encoding (usually GB2312/GB18030) and the
// charset must be detected from the response bytes before decoding.
//
// # Page Layout
//
// Inside a <div class="wdetail"> container sits a <table class="b"> whose
// first row is a header. Each data row has exactly four cells:
//
//	[date, weather day/night, high/low temp, wind day/night]
//
// Cell conventions:
//
//	Date:    "2024年4月26日" — four-digit year, 1-2 digit month and day.
//	Weather: "多云 /晴" — day and night conditions around a slash, kept verbatim.
//	Temp:    "28℃ / 21℃" — split on the first slash into high and low.
//	         Without a slash the whole cell is the high and the low is empty.
//	Wind:    "无持续风向 1-2级 /无持续风向 1-2级" — split like the temp cell
//	         into day and night descriptors.
//
// Temperatures and wind are carried as strings; the site embeds units and
// occasionally free-form text, so no numeric parsing is attempted. Internal
// whitespace and newlines inside cells are collapsed to single spaces.
//
// Rows that do not have exactly four cells, or whose date cell does not
// parse, are skipped individually; a bad row never discards the rest of the
// month.
package domain
