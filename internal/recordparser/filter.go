package recordparser

// DefaultLinearFeatureFilter is the default set of taxiway line-type codes
// that keep a linear feature; New accepts a replacement set. A feature survives if any of
// its nodes carries one of these codes; everything else is dropped. This
// is the one documented lever for which surface markings are retained.
var DefaultLinearFeatureFilter = []int{1, 4, 5, 6, 7, 51, 54, 55, 56, 57, 101, 103, 104, 105, 107, 108}

func toFilterSet(codes []int) map[int]bool {
	set := make(map[int]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}
