package cli

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/stlplant/tankview/pkg/api"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/model"
)

// tankFile is the object form of a tanks file. A bare JSON array of tanks
// is accepted as well.
type tankFile = model.LineTanks

// readTanks reads tanks from path, or stdin for "-".
func readTanks(path string) (tankFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return tankFile{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "tanks file %s", path)
		}
		return tankFile{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return parseTanks(data)
}

func parseTanks(data []byte) (tankFile, error) {
	return model.DecodeLineTanks(data)
}

// fetchLine loads the tanks of a line from the backend.
func fetchLine(ctx context.Context, client *api.Client, lineID int) (tankFile, error) {
	var f tankFile
	err := withSpinner(ctx, "Fetching tanks of line "+strconv.Itoa(lineID)+"...", func() error {
		tanks, err := client.Lines.Tanks(ctx, lineID)
		if err != nil {
			return err
		}
		line, err := client.Lines.Get(ctx, lineID)
		if err != nil {
			return err
		}
		f = tankFile{Line: &line, Tanks: tanks}
		return nil
	})
	return f, err
}

// parsePoint parses "x,y".
func parsePoint(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "point %q must be x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "point %q must be two numbers", s)
	}
	return x, y, nil
}

// parseID parses a positive record id.
func parseID(kind, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s id must be a positive number, got %q", kind, s)
	}
	return id, nil
}
