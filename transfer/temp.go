/***************************************************************
 *
 * Copyright (C) 2025, URL Relay Project
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License.  You may
 * obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 ***************************************************************/

package transfer

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// A tempObject is the exclusively-owned scratch file holding one part's
// bytes between download completion and upload start.  It is bound to the
// lifetime of one part's download→upload cycle; Release must run on every
// exit path.
type tempObject struct {
	file *os.File
	path string
}

// newTempObject creates a scratch file for one part in dir, using
// rsync-style dotfile naming so interrupted runs are easy to spot.
func newTempObject(dir, name string) (*tempObject, error) {
	file, err := os.CreateTemp(dir, fmt.Sprintf(".%s.*", name))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temporary file")
	}
	return &tempObject{file: file, path: file.Name()}, nil
}

func (t *tempObject) Write(p []byte) (int, error) {
	return t.file.Write(p)
}

// Reset rewinds the object for reading back and reports its size.
func (t *tempObject) Reset() (int64, error) {
	info, err := t.file.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "failed to stat temporary file")
	}
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return 0, errors.Wrap(err, "failed to rewind temporary file")
	}
	return info.Size(), nil
}

// Release closes and deletes the underlying file.  Failures are logged and
// swallowed; a leaked scratch file never fails a transfer.
func (t *tempObject) Release() {
	if err := t.file.Close(); err != nil {
		log.Warningln("Failed to close temporary file", t.path, ":", err)
	}
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		log.Warningln("Failed to remove temporary file", t.path, ":", err)
	}
}
