/*
 *  Copyright (c) 2025, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 */

// Package crypto implements the envelope encryption protecting secret
// values at rest: AES-256-GCM with a scrypt-derived key, fresh salt and
// nonce per call, and the encryption timestamp bound as additional
// authenticated data. The master key is never persisted alongside data;
// only the envelope and the in-memory master key can reconstruct a value.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/scrypt"

	"vault-api/src/internal/constants"
)

const (
	saltLength  = 32
	nonceLength = 12 // 96-bit nonce for AES-GCM
	tsLength    = 8  // big-endian unix seconds
	keyLength   = 32 // 256-bit key

	// scrypt work factor tuned so one derivation costs tens of
	// milliseconds on commodity hardware.
	scryptN = 1 << 14
	scryptR = 8
	scryptP = 1
)

// deriveKey derives a 256-bit encryption key from the master key and salt.
func deriveKey(masterKey string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(masterKey), salt, scryptN, scryptR, scryptP, keyLength)
}

// Encrypt seals plaintext with AES-256-GCM under a key derived from
// masterKey. The returned envelope is
// base64(salt || nonce || timestamp || ciphertext+tag); the fresh random
// salt guarantees two calls with the same master key never reuse a
// derived key.
func Encrypt(plaintext, masterKey string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := deriveKey(masterKey, salt)
	if err != nil {
		return "", fmt.Errorf("key derivation failed: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	// The encryption timestamp is authenticated but not encrypted, so the
	// envelope carries a tamper-evident creation time.
	timestamp := make([]byte, tsLength)
	binary.BigEndian.PutUint64(timestamp, uint64(time.Now().Unix()))

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), timestamp)

	combined := make([]byte, 0, saltLength+nonceLength+tsLength+len(ciphertext))
	combined = append(combined, salt...)
	combined = append(combined, nonce...)
	combined = append(combined, timestamp...)
	combined = append(combined, ciphertext...)

	return base64.StdEncoding.EncodeToString(combined), nil
}

// Decrypt opens an envelope produced by Encrypt, re-deriving the key from
// the embedded salt. It fails closed with constants.ErrDecryptionFailed
// when the authentication tag does not verify, which covers both a wrong
// master key and a tampered envelope.
func Decrypt(envelope, masterKey string) (string, error) {
	combined, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", constants.ErrInvalidEnvelope
	}
	if len(combined) < saltLength+nonceLength+tsLength {
		return "", constants.ErrInvalidEnvelope
	}

	salt := combined[:saltLength]
	nonce := combined[saltLength : saltLength+nonceLength]
	timestamp := combined[saltLength+nonceLength : saltLength+nonceLength+tsLength]
	ciphertext := combined[saltLength+nonceLength+tsLength:]

	key, err := deriveKey(masterKey, salt)
	if err != nil {
		return "", fmt.Errorf("key derivation failed: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, timestamp)
	if err != nil {
		return "", constants.ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// EnvelopeTimestamp extracts the authenticated encryption time from an
// envelope without decrypting it. Note the value is only trustworthy
// after a successful Decrypt.
func EnvelopeTimestamp(envelope string) (time.Time, error) {
	combined, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return time.Time{}, constants.ErrInvalidEnvelope
	}
	if len(combined) < saltLength+nonceLength+tsLength {
		return time.Time{}, constants.ErrInvalidEnvelope
	}
	secs := binary.BigEndian.Uint64(combined[saltLength+nonceLength : saltLength+nonceLength+tsLength])
	return time.Unix(int64(secs), 0), nil
}

// GenerateAPIKey produces a high-entropy URL-safe API key with the
// recognizable "av_" prefix. Called only at key-creation time.
func GenerateAPIKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return constants.APIKeyPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashAPIKey returns the deterministic one-way hash under which an API
// key is stored and looked up.
func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
