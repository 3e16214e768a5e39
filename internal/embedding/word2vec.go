package embedding

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// WriteWord2Vec writes the model in the word2vec text format read by gensim
// and most embedding tools: a "count dim" header, then one line per node
// with its label and raw vector. Whitespace inside a label becomes "_" since
// the format splits on spaces.
func WriteWord2Vec(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", m.Len(), m.dim); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var line []byte
	for i, name := range m.names {
		line = append(line[:0], word2VecToken(name)...)
		for _, f := range m.vectors[i] {
			line = append(line, ' ')
			line = strconv.AppendFloat(line, float64(f), 'g', -1, 32)
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("write %q: %w", name, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush word2vec: %w", err)
	}
	return nil
}

func word2VecToken(label string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, label)
}
