package mp4

import "github.com/farcloser/atl"

// fieldByNativeCode maps a native ilst atom tag to the semantic field it
// represents (spec.md §4.4). trkn/disk are mapped here too; their values are
// decoded from the packed-number form first. Atoms not present here are
// either pictures (covr) or accumulate as AdditionalFields when requested.
var fieldByNativeCode = map[string]atl.FieldID{
	"\xa9nam": atl.Title,
	"titl":    atl.Title,
	"\xa9alb": atl.Album,
	"\xa9art": atl.Artist,
	"\xa9cmt": atl.Comment,
	"\xa9day": atl.RecordingYear,
	"\xa9gen": atl.Genre,
	"gnre":    atl.Genre,
	"trkn":    atl.TrackNumber,
	"disk":    atl.DiscNumber,
	"rtng":    atl.Rating,
	"\xa9wrt": atl.Composer,
	"desc":    atl.GeneralDescription,
	"cprt":    atl.Copyright,
	"aart":    atl.AlbumArtist,
}

// nativeCodesByField lists, per semantic field, the native codes Write emits
// a frame for (one frame per code). Every field lists a single code; the
// read-only alternate spellings "titl" and "\xa9gen" are not written.
var nativeCodesByField = map[atl.FieldID][]string{
	atl.Title:              {"\xa9nam"},
	atl.Album:              {"\xa9alb"},
	atl.Artist:             {"\xa9art"},
	atl.Comment:            {"\xa9cmt"},
	atl.RecordingYear:      {"\xa9day"},
	atl.Genre:              {"gnre"},
	atl.TrackNumber:        {"trkn"},
	atl.DiscNumber:         {"disk"},
	atl.Rating:             {"rtng"},
	atl.Composer:           {"\xa9wrt"},
	atl.GeneralDescription: {"desc"},
	atl.Copyright:          {"cprt"},
	atl.AlbumArtist:        {"aart"},
}

// packedNumberCodes are the native atom tags whose data_class is 0 and
// whose payload is the 2-byte-aligned packed-number form, rather than raw
// text.
var packedNumberCodes = map[string]bool{
	"trkn": true,
	"disk": true,
}

// declaredDataClass is the fixed write-time table from native atom tag to
// the data_class to declare in the emitted "data" atom (spec.md §4.4's
// frame encoder table). Anything absent defaults to DataClassUTF8.
var declaredDataClass = map[string]atl.DataClass{
	"gnre": atl.DataClassReserved0,
	"trkn": atl.DataClassReserved0,
	"disk": atl.DataClassReserved0,
	"purl": atl.DataClassReserved0,
	"egid": atl.DataClassReserved0,
	"rtng": atl.DataClassUint8,
	"tmpo": atl.DataClassUint8,
	"cpil": atl.DataClassUint8,
	"stik": atl.DataClassUint8,
	"pcst": atl.DataClassUint8,
	"tvsn": atl.DataClassUint8,
	"tves": atl.DataClassUint8,
	"pgap": atl.DataClassUint8,
}

// classForNativeCode returns the data_class to declare when writing the
// given native atom tag.
func classForNativeCode(code string) atl.DataClass {
	if class, ok := declaredDataClass[code]; ok {
		return class
	}

	return atl.DataClassUTF8
}

// id3v1Genres is the 1-indexed-in-MP4 ID3v1 genre name table used to
// decode the "gnre" atom's packed genre index.
var id3v1Genres = []string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel",
	"Noise", "AlternRock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic", "Darkwave",
	"Techno-Industrial", "Electronic", "Pop-Folk", "Eurodance", "Dream",
	"Southern Rock", "Comedy", "Cult", "Gangsta", "Top 40", "Christian Rap",
	"Pop/Funk", "Jungle", "Native American", "Cabaret", "New Wave",
	"Psychadelic", "Rave", "Showtunes", "Trailer", "Lo-Fi", "Tribal",
	"Acid Punk", "Acid Jazz", "Polka", "Retro", "Musical", "Rock & Roll",
	"Hard Rock", "Folk", "Folk-Rock", "National Folk", "Swing", "Fast Fusion",
	"Bebob", "Latin", "Revival", "Celtic", "Bluegrass", "Avantgarde",
	"Gothic Rock", "Progressive Rock", "Psychedelic Rock", "Symphonic Rock",
	"Slow Rock", "Big Band", "Chorus", "Easy Listening", "Acoustic",
	"Humour", "Speech", "Chanson", "Opera", "Chamber Music", "Sonata",
	"Symphony", "Booty Bass", "Primus", "Porn Groove", "Satire", "Slow Jam",
	"Club", "Tango", "Samba", "Folklore", "Ballad", "Power Ballad",
	"Rhythmic Soul", "Freestyle", "Duet", "Punk Rock", "Drum Solo",
	"A capella", "Euro-House", "Dance Hall", "Audiobook", "Audio Theatre",
}

// genreNameFromIndex maps a 1-based "gnre" atom index to its ID3v1 genre
// name, returning "" if out of range (spec.md §4.4).
func genreNameFromIndex(index uint16) string {
	idx := int(index) - 1
	if idx < 0 || idx >= len(id3v1Genres) {
		return ""
	}

	return id3v1Genres[idx]
}

// genreIndexFromName reverse-looks-up a genre name to its 1-based "gnre"
// index for the write path. Unknown names return 0, "not found".
func genreIndexFromName(name string) (uint16, bool) {
	for i, g := range id3v1Genres {
		if g == name {
			return uint16(i + 1), true //nolint:gosec // table has 128 entries, well under uint16 range.
		}
	}

	return 0, false
}
