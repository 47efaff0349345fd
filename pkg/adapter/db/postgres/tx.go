// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

// Tx is an ongoing transaction which is created by Conn.Tx or by
// Conn.SerializableTx. It is not safe for concurrent use.
type Tx struct {
	session
}

func (tx *Tx) IsTx() {
}
