/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Author: Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package sheets

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Gyamps/protein-mutation-sheet/config"
	"golang.org/x/oauth2/jwt"
)

const (
	ErrNoCredentials         = Error("no service account credentials file configured")
	ErrBadCredentials        = Error("unreadable credentials file")
	ErrNotServiceAccount     = Error("credentials are not for a service account")
	ErrIncompleteCredentials = Error("credentials lack a client email or private key")

	serviceAccountType = "service_account"
	spreadsheetsScope  = "https://www.googleapis.com/auth/spreadsheets"
	defaultTokenURI    = "https://oauth2.googleapis.com/token"
)

// Credentials are the fields of a Google service account key file that are
// needed to write to sheets on that account's behalf.
type Credentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// ReadCredentials parses the service account key file at path. Keys for other
// account types, or ones missing the email or private key, are rejected. A
// missing token_uri defaults to Google's token endpoint.
func ReadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cr := &Credentials{}
	if err = json.Unmarshal(data, cr); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadCredentials, path, err)
	}

	if err = cr.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}

	if cr.TokenURI == "" {
		cr.TokenURI = defaultTokenURI
	}

	return cr, nil
}

func (cr *Credentials) validate() error {
	if cr.Type != serviceAccountType {
		return ErrNotServiceAccount
	}

	if cr.ClientEmail == "" || cr.PrivateKey == "" {
		return ErrIncompleteCredentials
	}

	return nil
}

// NewFromConfig returns a Sheets authenticated with the service account key
// file named by the config's CredentialsPath.
func NewFromConfig(c *config.Config) (*Sheets, error) {
	if c.CredentialsPath == "" {
		return nil, ErrNoCredentials
	}

	cr, err := ReadCredentials(c.CredentialsPath)
	if err != nil {
		return nil, err
	}

	return New(cr)
}

func (cr *Credentials) jwtConfig() *jwt.Config {
	return &jwt.Config{
		Email:        cr.ClientEmail,
		PrivateKey:   []byte(cr.PrivateKey),
		PrivateKeyID: cr.PrivateKeyID,
		TokenURL:     cr.TokenURI,
		Scopes:       []string{spreadsheetsScope},
	}
}
