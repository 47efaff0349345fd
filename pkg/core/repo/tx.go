// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Tx is a transaction which is passed to a TxHandler. It must not be
// used concurrently or after the handler returns. Conn.Tx starts it
// with the READ-COMMITTED isolation level and Conn.SerializableTx with
// the SERIALIZABLE one.
type Tx interface {
	Queryer

	// IsTx keeps a Conn from satisfying this interface by accident.
	IsTx()
}
