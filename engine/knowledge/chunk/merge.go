package chunk

// merge packs consecutive pieces into chunks no longer than ChunkSize. After each
// emitted chunk the window keeps a suffix of whole pieces no longer than
// ChunkOverlap that still leaves room for the next piece.
func (s *Splitter) merge(pieces []piece, base int, out []Span) []Span {
	if len(pieces) == 0 {
		return out
	}
	size, overlap := s.cfg.ChunkSize, s.cfg.ChunkOverlap
	window := make([]piece, 0, len(pieces))
	total := 0
	for _, p := range pieces {
		if len(window) > 0 && total+p.length > size {
			out = append(out, windowSpan(window, base))
			for len(window) > 0 && (total > overlap || total+p.length > size) {
				total -= window[0].length
				window = window[1:]
			}
		}
		window = append(window, p)
		total += p.length
	}
	return append(out, windowSpan(window, base))
}

func windowSpan(window []piece, base int) Span {
	return Span{Start: base + window[0].start, End: base + window[len(window)-1].end}
}
