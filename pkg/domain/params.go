package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeParameters maps a node's free-form Parameters into a typed struct.
// Decoding is weakly typed because parameters travel through JSON and
// browser editors are sloppy about number/string distinctions.
func (n Node) DecodeParameters(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build parameter decoder: %w", err)
	}
	if err := dec.Decode(n.Parameters); err != nil {
		return fmt.Errorf("node %q: failed to decode parameters: %w", n.ID, err)
	}
	return nil
}
