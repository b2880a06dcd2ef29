package codec

import (
	"github.com/google/uuid"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
)

/*
Reads the whole file through a checksumming input and validates its
footer, then its header. Returns an in-memory input over the file
positioned right after the header, with the footer cut off.
*/
func OpenVerifiedInput(dir store.Directory, name, codecName string,
	minVersion, maxVersion int32, expectedID uuid.UUID) (
	in *store.ByteArrayIndexInput, version int32, id uuid.UUID, err error) {

	var main store.ChecksumIndexInput
	if main, err = store.OpenChecksumInput(dir, name, store.IO_CONTEXT_READONCE); err != nil {
		return nil, 0, id, err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, main)
	}()

	length := main.Length() - FOOTER_LENGTH
	if length < int64(HeaderLength(codecName)) {
		return nil, 0, id, errors.Wrapf(ErrCorruptIndex,
			"file is too short to hold header and footer: %v bytes (resource: %v)", main.Length(), name)
	}
	body := make([]byte, length)
	if err = main.ReadBytes(body); err != nil {
		return nil, 0, id, err
	}
	if _, err = CheckFooter(main); err != nil {
		return nil, 0, id, err
	}

	in = store.NewByteArrayIndexInput(name, body)
	if version, id, err = CheckHeader(in, codecName, minVersion, maxVersion, expectedID); err != nil {
		return nil, 0, id, err
	}
	return in, version, id, nil
}
