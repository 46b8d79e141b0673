package pq

import "testing"

func TestOrderWithoutDuplicates(t *testing.T) {
	q := Empty(func(a, b int) bool { return a < b })
	for _, x := range []int{5, 1, 4, 1, 3} {
		q.Add(x)
	}
	if q.Len() != 4 {
		t.Fatalf("expected 4 elements, got %d", q.Len())
	}

	var got []int
	for !q.IsEmpty() {
		got = append(got, q.GetNext())
	}
	for i, want := range []int{1, 3, 4, 5} {
		if got[i] != want {
			t.Errorf("position %d: got %d, want %d", i, got[i], want)
		}
	}
}

func TestRemove(t *testing.T) {
	q := Empty(func(a, b int) bool { return a < b })
	for x := 0; x < 10; x++ {
		q.Add(x)
	}

	if !q.Remove(0) || !q.Remove(7) {
		t.Fatal("queued elements were not removed")
	}
	if q.Remove(7) {
		t.Error("removed an element twice")
	}
	if q.Contains(7) {
		t.Error("removed element is still contained")
	}

	prev := -1
	for !q.IsEmpty() {
		x := q.GetNext()
		if x <= prev || x == 7 {
			t.Errorf("unexpected %d after %d", x, prev)
		}
		prev = x
	}
}
