package model

import (
	"fmt"
	"sort"
	"sync"
)

// Collection of FieldInfo(s) (accessible by number of by name)
//
// Field numbers are assigned in order of first sighting and never
// reused. All methods are safe for concurrent use.
type FieldInfos struct {
	sync.RWMutex
	byNumber []*FieldInfo
	byName   map[string]*FieldInfo
}

func NewFieldInfos(infos ...*FieldInfo) *FieldInfos {
	self := &FieldInfos{byName: make(map[string]*FieldInfo)}
	for _, info := range infos {
		assert2(info.Number >= 0, "illegal field number: %v for field %v", info.Number, info.Name)
		if prev, ok := self.byName[info.Name]; ok {
			panic(fmt.Sprintf("duplicate field names: %v and %v have: %v", prev.Number, info.Number, info.Name))
		}
		self.byName[info.Name] = info
	}
	self.byNumber = append(self.byNumber, infos...)
	sort.Slice(self.byNumber, func(i, j int) bool {
		return self.byNumber[i].Number < self.byNumber[j].Number
	})
	for i, info := range self.byNumber {
		if i > 0 && self.byNumber[i-1].Number == info.Number {
			panic(fmt.Sprintf("duplicate field numbers: %v and %v have: %v",
				self.byNumber[i-1].Name, info.Name, info.Number))
		}
	}
	return self
}

/*
Returns the FieldInfo for the named field, creating it with the next
free field number if it does not exist yet. Otherwise the existing
FieldInfo is widened to cover the given field type.

NOTE: this method does not shrink any capability; a field that once
stored term vectors keeps storing them for the rest of the segment.
*/
func (infos *FieldInfos) AddOrUpdate(name string, ft IndexableFieldType) *FieldInfo {
	infos.Lock()
	defer infos.Unlock()

	if fi, ok := infos.byName[name]; ok {
		fi.update(ft)
		return fi
	}
	var number int32
	if n := len(infos.byNumber); n > 0 {
		number = infos.byNumber[n-1].Number + 1
	}
	fi := NewFieldInfo(name, number, ft.Indexed(), ft.StoreTermVectors(),
		ft.StoreTermVectorPositions(), ft.StoreTermVectorOffsets(),
		ft.OmitNorms(), indexOptionsOf(ft))
	infos.byName[name] = fi
	infos.byNumber = append(infos.byNumber, fi)
	return fi
}

func indexOptionsOf(ft IndexableFieldType) IndexOptions {
	if !ft.Indexed() {
		return 0
	}
	return ft.IndexOptions()
}

/* Returns the number of fields */
func (infos *FieldInfos) Size() int {
	infos.RLock()
	defer infos.RUnlock()
	return len(infos.byNumber)
}

/* Return the FieldInfo object referenced by the field name */
func (infos *FieldInfos) FieldInfoByName(fieldName string) *FieldInfo {
	infos.RLock()
	defer infos.RUnlock()
	return infos.byName[fieldName]
}

/* Return the FieldInfo object referenced by the fieldNumber. */
func (infos *FieldInfos) FieldInfoByNumber(fieldNumber int) *FieldInfo {
	assert2(fieldNumber >= 0, "Illegal field number: %v", fieldNumber)
	infos.RLock()
	defer infos.RUnlock()
	i := sort.Search(len(infos.byNumber), func(i int) bool {
		return int(infos.byNumber[i].Number) >= fieldNumber
	})
	if i < len(infos.byNumber) && int(infos.byNumber[i].Number) == fieldNumber {
		return infos.byNumber[i]
	}
	return nil
}

/* Returns a copy of all field infos, ordered by field number. */
func (infos *FieldInfos) Values() []*FieldInfo {
	infos.RLock()
	defer infos.RUnlock()
	return append([]*FieldInfo(nil), infos.byNumber...)
}

func (infos *FieldInfos) any(pred func(fi *FieldInfo) bool) bool {
	infos.RLock()
	defer infos.RUnlock()
	for _, fi := range infos.byNumber {
		if pred(fi) {
			return true
		}
	}
	return false
}

/* Returns true if any fields have vectors */
func (infos *FieldInfos) HasVectors() bool {
	return infos.any((*FieldInfo).HasVectors)
}

/* Returns true if any fields have positions */
func (infos *FieldInfos) HasProx() bool {
	return infos.any(func(fi *FieldInfo) bool {
		return fi.indexed && fi.indexOptions.HasPositions()
	})
}

/* Returns true if any fields have freqs */
func (infos *FieldInfos) HasFreq() bool {
	return infos.any(func(fi *FieldInfo) bool {
		return fi.indexed && fi.indexOptions.HasFreqs()
	})
}

/* Returns true if at least one field has norms */
func (infos *FieldInfos) HasNorms() bool {
	return infos.any((*FieldInfo).HasNorms)
}

func (infos *FieldInfos) String() string {
	return fmt.Sprintf("hasFreq=%v hasProx=%v hasVectors=%v hasNorms=%v %v",
		infos.HasFreq(), infos.HasProx(), infos.HasVectors(), infos.HasNorms(), infos.Values())
}
