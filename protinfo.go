package vmnv

import (
	"encoding/xml"
	"io"
	"io/ioutil"
	"os"

	"github.com/go-errors/errors"
	"github.com/ivxv/vmnv/group"
	"github.com/ivxv/vmnv/internal/common"
	"github.com/ivxv/vmnv/oracle"
)

const (
	// DefaultAuxSid is the auxiliary session identifier used when the proof directory does not name one.
	DefaultAuxSid = "default"
	// DefaultType is the type of session whose proofs are verified.
	DefaultType = "shuffling"
	// KeyWidth is the number of group elements in the public key and in each ciphertext half.
	KeyWidth = 5

	corrNonInteractive = "noninteractive"

	// XMLHeader is written in front of protocol information files.
	XMLHeader = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"
)

// ProtocolInformation holds the public parameters of a mix-net session, as stored in its protocol
// information file. The string fields are kept verbatim since they are hashed into the proof
// challenges.
type ProtocolInformation struct {
	XMLName   xml.Name `xml:"protocol"`
	Version   string   `xml:"version"`
	Sid       string   `xml:"sid"`
	Name      string   `xml:"name"`
	PGroup    string   `xml:"pgroup"`
	KeyWidth  int      `xml:"keywidth"`
	VBitLenRO int      `xml:"vbitlenro"`
	EBitLenRO int      `xml:"ebitlenro"`
	PRG       string   `xml:"prg"`
	ROHash    string   `xml:"rohash"`
	Width     int      `xml:"width"`
	StatDist  int      `xml:"statdist"`
	Corr      string   `xml:"corr"`

	AuxSid string `xml:"-"`
	Type   string `xml:"-"`

	generator group.Element
	ciphGroup *group.ProductGroup
	prg       *oracle.Hash
	rohash    *oracle.Hash
}

// NewProtocolInformation returns validated protocol information for a non-interactive session
// over the group described by pgroup.
func NewProtocolInformation(version, sid, name, pgroup string, vbitlenro, ebitlenro int, prg, rohash string, width, statdist int) (*ProtocolInformation, error) {
	info := &ProtocolInformation{
		Version:   version,
		Sid:       sid,
		Name:      name,
		PGroup:    pgroup,
		KeyWidth:  KeyWidth,
		VBitLenRO: vbitlenro,
		EBitLenRO: ebitlenro,
		PRG:       prg,
		ROHash:    rohash,
		Width:     width,
		StatDist:  statdist,
		Corr:      corrNonInteractive,
	}
	if err := info.init(); err != nil {
		return nil, err
	}
	return info, nil
}

// NewProtocolInformationFromXML parses and validates protocol information.
func NewProtocolInformationFromXML(xmlInput string) (*ProtocolInformation, error) {
	info := &ProtocolInformation{}
	if err := xml.Unmarshal([]byte(xmlInput), info); err != nil {
		return nil, wrapf(ErrFormat, "protocol information: %v", err)
	}
	if err := info.init(); err != nil {
		return nil, err
	}
	return info, nil
}

// NewProtocolInformationFromFile reads protocol information from an XML file.
func NewProtocolInformationFromFile(filename string) (*ProtocolInformation, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.WrapPrefix(err, "protocol information", 0)
	}
	defer common.Close(f)

	b, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, errors.WrapPrefix(err, "protocol information", 0)
	}

	return NewProtocolInformationFromXML(string(b))
}

func (info *ProtocolInformation) init() error {
	if err := info.Validate(); err != nil {
		return err
	}
	var err error
	if info.generator, err = ParseGroupGenerator(info.PGroup); err != nil {
		return err
	}
	half, err := group.NewPowerGroup(info.Group(), info.KeyWidth)
	if err != nil {
		return err
	}
	if info.ciphGroup, err = group.NewPowerGroup(half, 2); err != nil {
		return err
	}
	if info.prg, err = oracle.NewHash(info.PRG); err != nil {
		return err
	}
	if info.rohash, err = oracle.NewHash(info.ROHash); err != nil {
		return err
	}
	if info.AuxSid == "" {
		info.AuxSid = DefaultAuxSid
	}
	if info.Type == "" {
		info.Type = DefaultType
	}
	return nil
}

// Validate performs sanity checks on the parameters that do not need the group to be parsed.
func (info *ProtocolInformation) Validate() error {
	for _, el := range []struct{ name, value string }{
		{"version", info.Version},
		{"sid", info.Sid},
		{"name", info.Name},
		{"pgroup", info.PGroup},
		{"prg", info.PRG},
		{"rohash", info.ROHash},
	} {
		if el.value == "" {
			return wrapf(ErrFormat, "protocol information element %q missing", el.name)
		}
	}
	if info.KeyWidth != KeyWidth {
		return wrapf(ErrFormat, "keywidth %d, expected %d", info.KeyWidth, KeyWidth)
	}
	if info.Corr != corrNonInteractive {
		return wrapf(ErrFormat, "only the non-interactive protocol is supported, got %q", info.Corr)
	}
	if info.VBitLenRO <= 0 || info.EBitLenRO <= 0 || info.StatDist <= 0 {
		return wrapf(ErrFormat, "bit lengths must be positive")
	}
	return nil
}

// Generator returns the standard generator of the group of the session.
func (info *ProtocolInformation) Generator() group.Element { return info.generator }

// Group returns the group of the session.
func (info *ProtocolInformation) Group() group.Group { return info.generator.Group() }

// CiphertextGroup returns the group of ciphertexts, pairs of KeyWidth-tuples of group elements.
// The public key belongs to the same group.
func (info *ProtocolInformation) CiphertextGroup() *group.ProductGroup { return info.ciphGroup }

// PRGFunc returns the hash function of the pseudo-random generator.
func (info *ProtocolInformation) PRGFunc() *oracle.Hash { return info.prg }

// ROFunc returns the hash function of the random oracle.
func (info *ProtocolInformation) ROFunc() *oracle.Hash { return info.rohash }

// ApplyParameters takes the auxiliary session identifier and type from the shuffle parameters of
// a proof directory, after checking them against the protocol information.
func (info *ProtocolInformation) ApplyParameters(params *ShuffleParameters) error {
	if params.Version != info.Version {
		return wrapf(ErrParameters, "version %q, protocol information has %q", params.Version, info.Version)
	}
	switch params.Type {
	case "shuffling", "mixing":
	default:
		return wrapf(ErrParameters, "session type %q has no proof of shuffle", params.Type)
	}
	if params.Width != info.Width {
		Logger.Debugf("proof directory width %d overrides protocol information width %d", params.Width, info.Width)
		info.Width = params.Width
	}
	info.AuxSid = params.AuxSid
	info.Type = params.Type
	return nil
}

// WriteTo writes the protocol information as XML.
func (info *ProtocolInformation) WriteTo(writer io.Writer) (int64, error) {
	numHeaderBytes, err := writer.Write([]byte(XMLHeader))
	if err != nil {
		return 0, err
	}

	b, err := xml.MarshalIndent(info, "", "   ")
	if err != nil {
		return int64(numHeaderBytes), err
	}
	numBodyBytes, err := writer.Write(b)
	return int64(numHeaderBytes + numBodyBytes), err
}

// WriteToFile writes the protocol information to an XML file.
func (info *ProtocolInformation) WriteToFile(filename string) (int64, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, err
	}
	defer common.Close(f)

	return info.WriteTo(f)
}
