package archive

// SetRemoveAll replaces the cleanup function used after a failed extraction.
func (x *Extractor) SetRemoveAll(fn func(string) (bool, error)) {
	x.removeAll = fn
}
