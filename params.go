package vmnv

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-errors/errors"
	"github.com/ivxv/vmnv/internal/common"
)

// Names of the one-line parameter files in a proof directory.
const (
	VersionFile = "version"
	AuxSidFile  = "auxsid"
	WidthFile   = "width"
	TypeFile    = "type"
)

// ShuffleParameters are the session parameters a mix-net stores next to its proof.
type ShuffleParameters struct {
	Version string
	AuxSid  string
	Width   int
	Type    string
}

// ReadShuffleParameters reads the parameter files of a proof directory. Each file must consist of
// a single line.
func ReadShuffleParameters(dir string) (*ShuffleParameters, error) {
	params := &ShuffleParameters{}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{VersionFile, &params.Version},
		{AuxSidFile, &params.AuxSid},
		{TypeFile, &params.Type},
	} {
		var err error
		if *f.dst, err = readParameter(filepath.Join(dir, f.name)); err != nil {
			return nil, err
		}
	}
	width, err := readParameter(filepath.Join(dir, WidthFile))
	if err != nil {
		return nil, err
	}
	if params.Width, err = strconv.Atoi(width); err != nil || params.Width <= 0 {
		return nil, wrapf(ErrFormat, "invalid width %q", width)
	}
	return params, nil
}

// HasShuffleParameters reports whether dir holds shuffle parameter files.
func HasShuffleParameters(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, VersionFile))
	return err == nil
}

// WriteShuffleParameters writes params into dir.
func WriteShuffleParameters(dir string, params *ShuffleParameters) error {
	for name, value := range map[string]string{
		VersionFile: params.Version,
		AuxSidFile:  params.AuxSid,
		WidthFile:   strconv.Itoa(params.Width),
		TypeFile:    params.Type,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0644); err != nil {
			return errors.WrapPrefix(err, "shuffle parameters", 0)
		}
	}
	return nil
}

func readParameter(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WrapPrefix(err, "shuffle parameters", 0)
	}
	defer common.Close(f)

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", errors.WrapPrefix(err, "shuffle parameters", 0)
	}
	if len(lines) != 1 {
		return "", wrapf(ErrFormat, "parameter file %s must have a single line", filepath.Base(path))
	}
	return strings.TrimSuffix(lines[0], "\r"), nil
}
