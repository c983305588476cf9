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
)

type (
	// A Part is one contiguous byte-range slice of the source object,
	// transferred independently because of the destination's size limit.
	// Start and End are inclusive offsets.
	Part struct {
		Index int
		Start int64
		End   int64
		Name  string
	}

	// A PartPlan is the ordered set of parts covering the whole source
	// object.  Ranges are contiguous, non-overlapping, and cover exactly
	// [0, TotalSize-1].
	PartPlan struct {
		SourceName string
		TotalSize  int64
		Parts      []Part
	}
)

// Length returns the number of bytes the part covers.
func (p Part) Length() int64 {
	return p.End - p.Start + 1
}

// Plan splits an object of totalSize bytes into parts of at most
// maxPartSize bytes each.  A single-part plan keeps the original name; a
// multi-part plan names every part <name>.partNNN with a 1-based 3-digit
// index.  Pure function; inputs must both be at least 1.
func Plan(name string, totalSize, maxPartSize int64) PartPlan {
	count := (totalSize + maxPartSize - 1) / maxPartSize
	parts := make([]Part, 0, count)
	for idx := int64(0); idx < count; idx++ {
		start := idx * maxPartSize
		end := start + maxPartSize - 1
		if end > totalSize-1 {
			end = totalSize - 1
		}
		partName := name
		if count > 1 {
			partName = fmt.Sprintf("%s.part%03d", name, idx+1)
		}
		parts = append(parts, Part{
			Index: int(idx),
			Start: start,
			End:   end,
			Name:  partName,
		})
	}
	return PartPlan{SourceName: name, TotalSize: totalSize, Parts: parts}
}

// Caption returns the destination caption for a part.  Single-part plans
// carry no caption at all.
func (pp PartPlan) Caption(p Part) string {
	if len(pp.Parts) <= 1 {
		return ""
	}
	return pp.Label(p)
}

// Label returns the human-oriented name for a part used in status
// messages; it annotates the part position only for multi-part plans.
func (pp PartPlan) Label(p Part) string {
	if len(pp.Parts) <= 1 {
		return pp.SourceName
	}
	return fmt.Sprintf("%s (Part %d/%d)", pp.SourceName, p.Index+1, len(pp.Parts))
}
