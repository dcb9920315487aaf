/*
SPDX-License-Identifier: GPL-3.0-or-later

Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com

This file is part of GoSight.

GoSight is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GoSight is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GoSight. If not, see https://www.gnu.org/licenses/.
*/

package hub

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteSSE encodes upd as one "data: ..." Server-Sent Events frame,
// matching the wire shape in SPEC_FULL.md §6.2.
func WriteSSE(w io.Writer, upd interface{}) error {
	data, err := json.Marshal(upd)
	if err != nil {
		return fmt.Errorf("hub: encode update: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// WriteSSEComment writes a comment-only line, used as a keepalive that
// intermediaries won't buffer indefinitely.
func WriteSSEComment(w io.Writer, comment string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", comment)
	return err
}
