package sink

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/render/tank/layout"
)

// RenderJSON returns the layout geometry, including hit-regions, as
// indented JSON.
func RenderJSON(l layout.Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal layout")
	}
	return data, nil
}

// RenderMsgpack returns the layout geometry as msgpack.
func RenderMsgpack(l layout.Layout) ([]byte, error) {
	data, err := msgpack.Marshal(l)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal layout")
	}
	return data, nil
}
