// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifoq

// pad is cache line padding to prevent false sharing between hot atomic
// fields. write/read/size/lock each get their own cache line so one
// producer's writes don't stall an unrelated consumer's loads.
type pad [64]byte
