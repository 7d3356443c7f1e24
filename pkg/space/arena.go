package space

import "github.com/zurustar/azscript/pkg/entity"

// arenaSlot は arena の1エントリ。
type arenaSlot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// arena は固定容量のエンティティ格納領域。
// 挿入のたびにスロットの世代を進めるため、削除済みエンティティの UID は
// 同じスロットが再利用された後も解決できない。
type arena[T any] struct {
	slots []arenaSlot[T]
	count int
}

func newArena[T any](capacity int) *arena[T] {
	return &arena[T]{slots: make([]arenaSlot[T], capacity)}
}

// insert は未使用の最小インデックスに v を格納する。
// 満杯の場合は ok=false を返す。
func (a *arena[T]) insert(v T) (id entity.UID, h entity.Handle, ok bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.live {
			continue
		}
		s.gen++
		s.value = v
		s.live = true
		a.count++
		return entity.UID{Index: uint32(i), Gen: s.gen}, entity.Handle(i), true
	}
	return entity.UID{}, 0, false
}

// find は UID が生存中のエンティティを指していればそのハンドルを返す。
func (a *arena[T]) find(id entity.UID) (entity.Handle, bool) {
	if id.IsZero() || int(id.Index) >= len(a.slots) {
		return 0, false
	}
	s := &a.slots[id.Index]
	if !s.live || s.gen != id.Gen {
		return 0, false
	}
	return entity.Handle(id.Index), true
}

// get returns the entity at h. The handle must come from find or insert.
func (a *arena[T]) get(h entity.Handle) *T {
	return &a.slots[h].value
}

func (a *arena[T]) uid(h entity.Handle) entity.UID {
	return entity.UID{Index: uint32(h), Gen: a.slots[h].gen}
}

func (a *arena[T]) remove(h entity.Handle) {
	s := &a.slots[h]
	if !s.live {
		return
	}
	var zero T
	s.value = zero
	s.live = false
	a.count--
}

// clear は全エントリを削除する。世代は保持する。
func (a *arena[T]) clear() {
	for i := range a.slots {
		a.remove(entity.Handle(i))
	}
}

func (a *arena[T]) len() int { return a.count }

func (a *arena[T]) capacity() int { return len(a.slots) }

// each calls fn for every live entity in index order.
func (a *arena[T]) each(fn func(h entity.Handle, v *T)) {
	for i := range a.slots {
		if a.slots[i].live {
			fn(entity.Handle(i), &a.slots[i].value)
		}
	}
}
