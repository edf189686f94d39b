package markup

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// AttributeNames walks the raw source of an opening tag and returns the
// attribute names in source order with their written case. Quoted values are
// skipped, so a '>' or '=' inside quotes does not end anything.
func AttributeNames(raw string) []string {
	i := 0
	if i < len(raw) && raw[i] == '<' {
		i++
	}
	// tag name
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}

	var names []string
	for i < len(raw) {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}

		start := i
		// a name may begin with '='
		i++
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && raw[i] != '/' {
			i++
		}
		names = append(names, raw[start:i])

		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			continue
		}
		i++
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) {
			break
		}
		switch q := raw[i]; q {
		case '"', '\'':
			i++
			for i < len(raw) && raw[i] != q {
				i++
			}
			i++
		default:
			for i < len(raw) && !isSpace(raw[i]) && raw[i] != '>' {
				i++
			}
		}
	}
	return names
}
