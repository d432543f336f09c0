package format

// encodingNames maps the single encoding byte from the file header to the
// IANA character set name SAS documents for it. The reader only tags the
// declared encoding; it never transcodes cell values.
var encodingNames = map[uint8]string{
	0:   "",
	20:  "UTF-8",
	28:  "US-ASCII",
	29:  "ISO-8859-1",
	30:  "ISO-8859-2",
	31:  "ISO-8859-3",
	32:  "ISO-8859-4",
	33:  "ISO-8859-5",
	34:  "ISO-8859-6",
	35:  "ISO-8859-7",
	36:  "ISO-8859-8",
	37:  "ISO-8859-9",
	38:  "ISO-8859-10",
	39:  "windows-874",
	40:  "ISO-8859-15",
	41:  "IBM437",
	42:  "IBM850",
	43:  "IBM852",
	44:  "IBM857",
	45:  "IBM00858",
	46:  "IBM862",
	47:  "IBM864",
	48:  "IBM865",
	49:  "IBM866",
	50:  "IBM869",
	51:  "IBM874",
	52:  "IBM921",
	53:  "IBM922",
	54:  "IBM1129",
	55:  "IBM720",
	56:  "IBM737",
	57:  "IBM775",
	58:  "IBM860",
	59:  "IBM863",
	60:  "windows-1250",
	61:  "windows-1251",
	62:  "windows-1252",
	63:  "windows-1253",
	64:  "windows-1254",
	65:  "windows-1255",
	66:  "windows-1256",
	67:  "windows-1257",
	68:  "windows-1258",
	69:  "macintosh",
	70:  "x-mac-arabic",
	71:  "x-mac-hebrew",
	72:  "x-mac-greek",
	73:  "x-mac-thai",
	75:  "x-mac-turkish",
	76:  "x-mac-ukrainian",
	118: "Big5",
	119: "EUC-TW",
	123: "Big5",
	125: "GB18030",
	126: "GBK",
	128: "IBM1381",
	134: "EUC-JP",
	136: "IBM949",
	137: "ISO-2022-JP",
	138: "Shift_JIS",
	139: "Shift_JIS",
	140: "EUC-KR",
	141: "IBM1388",
	142: "IBM1025",
	163: "x-mac-icelandic",
	167: "ISO-2022-JP",
	168: "ISO-2022-KR",
	169: "ISO-2022-CN",
	172: "ISO-2022-CN-EXT",
	204: "US-ASCII",
	205: "GB2312",
}

// EncodingName resolves the header encoding byte to its IANA name.
// Unknown bytes resolve to the empty string.
func EncodingName(code uint8) string {
	return encodingNames[code]
}

// EncodingUTF8 is the encoding byte the writer declares.
const EncodingUTF8 uint8 = 20
