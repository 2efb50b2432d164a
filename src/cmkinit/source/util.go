package source

import "io"

// writeAll writes each part in order to w, stopping at the first error —
// the Go equivalent of the original's out.writelines(tuple_of_strings).
func writeAll(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}
