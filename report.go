package vmnv

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-errors/errors"
)

var (
	// Core Deterministic Encoding (RFC 8949 section 4.2.1): equal reports encode to equal bytes.
	// Timestamps are plain unix seconds.
	reportEncOptions = cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		ShortestFloat: cbor.ShortestFloat16,
		IndefLength:   cbor.IndefLengthForbidden,
		Time:          cbor.TimeUnix,
		TimeTag:       cbor.EncTagNone,
		TagsMd:        cbor.TagsForbidden,
	}
	// Unknown fields are skipped.
	reportDecOptions = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
		TagsMd:      cbor.TagsForbidden,
		TimeTag:     cbor.DecTagIgnored,
	}

	reportEncMode cbor.EncMode
	reportDecMode cbor.DecMode
)

func init() {
	var err error
	if reportEncMode, err = reportEncOptions.EncMode(); err != nil {
		panic(err)
	}
	if reportDecMode, err = reportDecOptions.DecMode(); err != nil {
		panic(err)
	}
}

// Report records the outcome of verifying a proof of shuffle together with the derived values
// that determine it, so that an auditor can compare runs.
type Report struct {
	Verified bool `cbor:"verified"`
	// FailedEquation names the equation that did not hold, if any.
	FailedEquation string `cbor:"failed_equation,omitempty"`
	// FailedIndex is the failing position in the B chain, or -1.
	FailedIndex int `cbor:"failed_index"`

	Sid         string `cbor:"sid"`
	AuxSid      string `cbor:"auxsid"`
	Group       string `cbor:"group"`
	Ciphertexts int    `cbor:"ciphertexts"`
	Threads     int    `cbor:"threads"`

	Rho       []byte `cbor:"rho,omitempty"`
	Seed      []byte `cbor:"seed,omitempty"`
	Challenge []byte `cbor:"challenge,omitempty"`

	Started  time.Time `cbor:"started"`
	Finished time.Time `cbor:"finished"`
}

// Audit verifies the proof and returns a report of the run. A proof that does not verify yields a
// report naming the failing equation; errors are only returned if the proof could not be
// processed.
func (v *Verifier) Audit() (*Report, error) {
	r := &Report{
		FailedIndex: -1,
		Sid:         v.info.Sid,
		AuxSid:      v.info.AuxSid,
		Group:       v.info.Group().String(),
		Ciphertexts: v.proof.N(),
		Threads:     v.threads,
		Started:     time.Now(),
	}
	tr, err := v.run()
	r.Finished = time.Now()
	if tr != nil {
		r.Rho, r.Seed = tr.Rho, tr.Seed
		if tr.V != nil {
			r.Challenge = tr.V.Bytes()
		}
	}

	var perr *ProofError
	switch {
	case err == nil:
		r.Verified = true
		Logger.Infof("proof of shuffle of %d ciphertexts verified", r.Ciphertexts)
	case errors.As(err, &perr):
		r.FailedEquation = perr.Equation.String()
		r.FailedIndex = perr.Index
		Logger.Infof("proof of shuffle rejected: %v", err)
	default:
		return nil, err
	}
	return r, nil
}

// Encode returns the deterministic CBOR encoding of the report.
func (r *Report) Encode() ([]byte, error) {
	return reportEncMode.Marshal(r)
}

// DecodeReport parses a report written by Encode.
func DecodeReport(data []byte) (*Report, error) {
	r := &Report{}
	if err := reportDecMode.Unmarshal(data, r); err != nil {
		return nil, wrapf(ErrFormat, "report: %v", err)
	}
	return r, nil
}

// WriteFile stores the encoded report at path.
func (r *Report) WriteFile(path string) error {
	data, err := r.Encode()
	if err != nil {
		return err
	}
	if err = ioutil.WriteFile(path, data, 0644); err != nil {
		return errors.WrapPrefix(err, "could not write report", 0)
	}
	return nil
}

func (r *Report) String() string {
	if r.Verified {
		return fmt.Sprintf("session %s.%s: proof of shuffle of %d ciphertexts verified", r.Sid, r.AuxSid, r.Ciphertexts)
	}
	if r.FailedIndex >= 0 {
		return fmt.Sprintf("session %s.%s: proof of shuffle rejected, equation %s fails at index %d",
			r.Sid, r.AuxSid, r.FailedEquation, r.FailedIndex)
	}
	return fmt.Sprintf("session %s.%s: proof of shuffle rejected, equation %s fails", r.Sid, r.AuxSid, r.FailedEquation)
}
