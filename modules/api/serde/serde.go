// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serde

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes bounds request bodies decoded by DecodeJSONBody.
const MaxBodyBytes = 1 << 20

// DecodeJSONBody decodes the request body into valuePtr. An empty body is
// treated as an empty JSON object. Unknown fields are ignored.
func DecodeJSONBody[T any](w http.ResponseWriter, r *http.Request, valuePtr *T) error {
	if r.Body == nil || r.Body == http.NoBody {
		return json.Unmarshal([]byte("{}"), valuePtr)
	}
	defer r.Body.Close()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(valuePtr); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("serde: unexpected data after JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
