/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package telemetry

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// tokenLength is the wire-observed length of a correlation token.
const tokenLength = 38

// NewToken returns a correlation token for one outbound request. Tokens must
// stay unique for the life of the connection; 160 bits of entropy hashed and
// truncated to 38 hex characters leaves the collision space far beyond any
// plausible number of outstanding requests.
func NewToken() (string, error) {
	seed := make([]byte, 20)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("failed to generate request token: %w", err)
	}

	sum := sha256.Sum256(seed)

	return hex.EncodeToString(sum[:])[:tokenLength], nil
}
