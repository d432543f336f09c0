package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRowCompression(t *testing.T) {
	require.Equal(t, RowCompressionRLE, ParseRowCompression("SASYZCRL"))
	require.Equal(t, RowCompressionRDC, ParseRowCompression("SASYZCR2"))
	require.Equal(t, RowCompressionNone, ParseRowCompression(""))
	require.Equal(t, RowCompressionNone, ParseRowCompression("        "))
	require.Equal(t, RowCompressionNone, ParseRowCompression("\x00\x00"))
	require.Equal(t, RowCompressionUnknown, ParseRowCompression("SASYZX33"))
}

func TestRowCompressionString(t *testing.T) {
	require.Equal(t, "SASYZCRL", RowCompressionRLE.String())
	require.Equal(t, "SASYZCR2", RowCompressionRDC.String())
	require.Equal(t, "None", RowCompressionNone.String())
	require.Equal(t, "Unknown", RowCompressionUnknown.String())
}

func TestPageType(t *testing.T) {
	for _, p := range []PageType{PageData2, PageMix2, PageAMD} {
		require.True(t, p.HasDeletedBitmap())
	}
	for _, p := range []PageType{PageMeta, PageCMeta, PageData, PageMix1, PageMeta2} {
		require.False(t, p.HasDeletedBitmap())
	}

	require.True(t, PageMix1.Known())
	require.False(t, PageComp.Known())
	require.False(t, PageType(7).Known())
}

func TestEncodingName(t *testing.T) {
	require.Equal(t, "UTF-8", EncodingName(20))
	require.Equal(t, "US-ASCII", EncodingName(28))
	require.Equal(t, "ISO-8859-1", EncodingName(29))
	require.Equal(t, "windows-1252", EncodingName(62))
	require.Equal(t, "", EncodingName(255))
}
