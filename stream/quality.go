package stream

// Quality is the vertical-resolution key of a file stream variant.
type Quality string

const (
	Quality360     Quality = "360"
	Quality480     Quality = "480"
	Quality720     Quality = "720"
	Quality1080    Quality = "1080"
	Quality4K      Quality = "4k"
	QualityUnknown Quality = "unknown"
)

// Qualities lists every valid quality key from best to worst.
var Qualities = []Quality{Quality4K, Quality1080, Quality720, Quality480, Quality360, QualityUnknown}

// Best returns the highest quality present in the map, or QualityUnknown when empty.
func Best(qualities map[Quality]Variant) Quality {
	for _, q := range Qualities {
		if _, ok := qualities[q]; ok {
			return q
		}
	}
	return QualityUnknown
}
