package manifest

// Filter returns the emoji whose category is in categories, preserving
// manifest order.
func Filter(emojis []Emoji, categories CategorySet) []Emoji {
	var out []Emoji
	for _, e := range emojis {
		if categories.Contains(e.Category) {
			out = append(out, e)
		}
	}
	return out
}
