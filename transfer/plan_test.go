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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSinglePart(t *testing.T) {
	plan := Plan("video.mkv", 1000, 4096)
	require.Len(t, plan.Parts, 1)
	part := plan.Parts[0]
	assert.Equal(t, int64(0), part.Start)
	assert.Equal(t, int64(999), part.End)
	assert.Equal(t, int64(1000), part.Length())
	// A single part keeps the original name and carries no caption
	assert.Equal(t, "video.mkv", part.Name)
	assert.Equal(t, "", plan.Caption(part))
}

func TestPlanExactMultiple(t *testing.T) {
	plan := Plan("data.bin", 8192, 4096)
	require.Len(t, plan.Parts, 2)
	assert.Equal(t, "data.bin.part001", plan.Parts[0].Name)
	assert.Equal(t, "data.bin.part002", plan.Parts[1].Name)
	assert.Equal(t, int64(4096), plan.Parts[0].Length())
	assert.Equal(t, int64(4096), plan.Parts[1].Length())
}

func TestPlanOneByteOver(t *testing.T) {
	plan := Plan("data.bin", 4097, 4096)
	require.Len(t, plan.Parts, 2)
	assert.Equal(t, int64(4096), plan.Parts[0].Length())
	assert.Equal(t, int64(1), plan.Parts[1].Length())
	assert.Equal(t, "data.bin (Part 2/2)", plan.Caption(plan.Parts[1]))
}

func TestPlanFiveGiBAtFourGiBLimit(t *testing.T) {
	const gib = int64(1024 * 1024 * 1024)
	plan := Plan("file", 5*gib, 4*gib)
	require.Len(t, plan.Parts, 2)
	assert.Equal(t, int64(0), plan.Parts[0].Start)
	assert.Equal(t, int64(4294967295), plan.Parts[0].End)
	assert.Equal(t, "file.part001", plan.Parts[0].Name)
	assert.Equal(t, int64(4294967296), plan.Parts[1].Start)
	assert.Equal(t, int64(5368709119), plan.Parts[1].End)
	assert.Equal(t, "file.part002", plan.Parts[1].Name)
}

// The parts must tile the object exactly: contiguous, non-overlapping,
// and summing to the total size.
func TestPlanCoversObject(t *testing.T) {
	cases := []struct {
		total int64
		max   int64
	}{
		{1, 1},
		{10, 3},
		{4096, 4096},
		{4097, 4096},
		{1 << 20, 4096},
	}
	for _, tc := range cases {
		plan := Plan("f", tc.total, tc.max)
		var sum int64
		next := int64(0)
		for _, part := range plan.Parts {
			assert.Equal(t, next, part.Start)
			assert.LessOrEqual(t, part.Length(), tc.max)
			sum += part.Length()
			next = part.End + 1
		}
		assert.Equal(t, tc.total, sum)
		assert.Equal(t, tc.total-1, plan.Parts[len(plan.Parts)-1].End)
	}
}
