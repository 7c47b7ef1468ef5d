package service

import (
	"sync"
	"testing"
)

func TestStatsService_RecordAndGet(t *testing.T) {
	s := NewStatsService()

	s.RecordAllow()
	s.RecordAllow()
	s.RecordDeny()
	s.RecordPrompt()
	s.RecordError()
	s.RecordError()
	s.RecordError()

	stats := s.GetStats()

	if stats.Allowed != 2 {
		t.Errorf("Allowed = %d, want 2", stats.Allowed)
	}
	if stats.Denied != 1 {
		t.Errorf("Denied = %d, want 1", stats.Denied)
	}
	if stats.Prompted != 1 {
		t.Errorf("Prompted = %d, want 1", stats.Prompted)
	}
	if stats.Errors != 3 {
		t.Errorf("Errors = %d, want 3", stats.Errors)
	}
}

func TestStatsService_Reset(t *testing.T) {
	s := NewStatsService()

	s.RecordAllow()
	s.RecordDeny()
	s.RecordPrompt()
	s.RecordError()

	s.Reset()

	stats := s.GetStats()
	if stats.Allowed != 0 || stats.Denied != 0 || stats.Prompted != 0 || stats.Errors != 0 {
		t.Errorf("after Reset, stats should be all zero: got %+v", stats)
	}
}

func TestStatsService_ConcurrentAccess(t *testing.T) {
	s := NewStatsService()

	const goroutines = 100
	const opsPerGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines * 4)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				s.RecordAllow()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				s.RecordDeny()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				s.RecordPrompt()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				s.RecordError()
			}
		}()
	}

	wg.Wait()

	stats := s.GetStats()
	expected := int64(goroutines * opsPerGoroutine)

	if stats.Allowed != expected {
		t.Errorf("Allowed = %d, want %d", stats.Allowed, expected)
	}
	if stats.Denied != expected {
		t.Errorf("Denied = %d, want %d", stats.Denied, expected)
	}
	if stats.Prompted != expected {
		t.Errorf("Prompted = %d, want %d", stats.Prompted, expected)
	}
	if stats.Errors != expected {
		t.Errorf("Errors = %d, want %d", stats.Errors, expected)
	}
}

func TestStatsService_InitialZero(t *testing.T) {
	s := NewStatsService()
	stats := s.GetStats()

	if stats.Allowed != 0 || stats.Denied != 0 || stats.Prompted != 0 || stats.Errors != 0 {
		t.Errorf("new StatsService should have all zero counters: got %+v", stats)
	}
	if len(stats.ToolCalls) != 0 {
		t.Errorf("new StatsService should have empty tool call counts, got %+v", stats.ToolCalls)
	}
}

func TestStatsService_RecordToolCall(t *testing.T) {
	s := NewStatsService()

	s.RecordToolCall("export_table")
	s.RecordToolCall("export_table")
	s.RecordToolCall("read_file")

	stats := s.GetStats()
	if stats.ToolCalls["export_table"] != 2 {
		t.Errorf("export_table = %d, want 2", stats.ToolCalls["export_table"])
	}
	if stats.ToolCalls["read_file"] != 1 {
		t.Errorf("read_file = %d, want 1", stats.ToolCalls["read_file"])
	}
}

func TestStatsService_RecordToolCall_SkipsEmpty(t *testing.T) {
	s := NewStatsService()

	s.RecordToolCall("")
	s.RecordToolCall("export_table")

	stats := s.GetStats()
	if len(stats.ToolCalls) != 1 {
		t.Errorf("expected 1 tool entry, got %d: %+v", len(stats.ToolCalls), stats.ToolCalls)
	}
}

func TestStatsService_GetStats_ToolCallsSnapshot(t *testing.T) {
	s := NewStatsService()

	s.RecordToolCall("export_table")

	stats := s.GetStats()
	stats.ToolCalls["export_table"] = 999

	stats2 := s.GetStats()
	if stats2.ToolCalls["export_table"] != 1 {
		t.Errorf("snapshot should be a copy, got export_table = %d", stats2.ToolCalls["export_table"])
	}
}

func TestStatsService_Reset_ClearsToolCalls(t *testing.T) {
	s := NewStatsService()

	s.RecordToolCall("export_table")
	s.RecordToolCall("read_file")

	s.Reset()

	stats := s.GetStats()
	if len(stats.ToolCalls) != 0 {
		t.Errorf("after Reset, tool call counts should be empty: got %+v", stats.ToolCalls)
	}
}

func TestStatsService_ConcurrentToolCalls(t *testing.T) {
	s := NewStatsService()

	const goroutines = 50
	const opsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				s.RecordToolCall("export_table")
			}
		}()
	}

	wg.Wait()

	stats := s.GetStats()
	expected := int64(goroutines * opsPerGoroutine)
	if stats.ToolCalls["export_table"] != expected {
		t.Errorf("export_table = %d, want %d", stats.ToolCalls["export_table"], expected)
	}
}
