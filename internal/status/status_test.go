package status

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var allStatuses = []string{
	Pending, Processing, Quoted, Confirmed, Paid,
	Shipping, Delivered, Completed, Cancelled, Rejected,
}

func TestText_AllMappedAnyCasing(t *testing.T) {
	for _, s := range allStatuses {
		want := statusText[s]
		require.Equal(t, want, Text(s))
		require.Equal(t, want, Text(strings.ToUpper(s)))
	}
}

func TestText_Fallbacks(t *testing.T) {
	require.Equal(t, UnknownLabel, Text(""))
	// незнакомый статус отдаём как есть
	require.Equal(t, "on_hold", Text("on_hold"))
}

func TestColor_Fallbacks(t *testing.T) {
	require.Equal(t, NeutralColor, Color(""))
	require.Equal(t, NeutralColor, Color("on_hold"))
	require.Equal(t, "#FFA726", Color("PENDING"))
	require.Equal(t, "#EF5350", Color("cancelled"))
}

func TestPredicates(t *testing.T) {
	wantCancel := map[string]bool{Pending: true, Processing: true, Quoted: true}
	for _, s := range allStatuses {
		require.Equal(t, wantCancel[s], CanCancel(s), s)
	}
	require.False(t, CanCancel(""))

	for _, s := range allStatuses {
		require.Equal(t, s == Quoted, CanPay(s), s)
	}
	require.False(t, CanPay(""))

	wantEdit := map[string]bool{Pending: true, Processing: true}
	for _, s := range allStatuses {
		require.Equal(t, wantEdit[s], CanEdit(s), s)
	}

	wantQuote := map[string]bool{
		Quoted: true, Confirmed: true, Paid: true,
		Shipping: true, Delivered: true, Completed: true,
	}
	for _, s := range allStatuses {
		require.Equal(t, wantQuote[s], ShowQuotation(s), s)
	}
	require.False(t, ShowQuotation(""))
}

func TestNextPossible(t *testing.T) {
	require.ElementsMatch(t, []string{Processing, Cancelled}, NextPossible(Pending))
	require.Empty(t, NextPossible(Completed))
	require.Empty(t, NextPossible(Cancelled))
	require.Empty(t, NextPossible(Rejected))
	require.Empty(t, NextPossible("bogus"))

	// таблица замкнута на известных статусах
	for _, s := range allStatuses {
		for _, n := range NextPossible(s) {
			require.Contains(t, allStatuses, n)
		}
	}
}

func TestNextPossible_CopyIsolated(t *testing.T) {
	a := NextPossible(Pending)
	a[0] = "mutated"
	require.ElementsMatch(t, []string{Processing, Cancelled}, NextPossible(Pending))
}

func TestRequestType(t *testing.T) {
	require.Equal(t, "link-outline", TypeIcon(TypeWithLink))
	require.Equal(t, "#42A5F5", TypeBorderColor(TypeWithLink))
	// with_link и online отображаются одинаково
	require.Equal(t, TypeIcon(TypeOnline), TypeIcon(TypeWithLink))
	require.Equal(t, TypeBorderColor(TypeOnline), TypeBorderColor(TypeWithLink))

	require.Equal(t, "help-outline", TypeIcon("bogus"))
	require.Equal(t, NeutralColor, TypeBorderColor("bogus"))
	require.Equal(t, "bogus", TypeText("bogus"))
	require.Equal(t, UnknownLabel, TypeText(""))
}

func TestShortID(t *testing.T) {
	require.Equal(t, "#abc123", ShortID("abc123-def456"))
	require.Equal(t, "#plainId", ShortID("plainId"))
	require.Equal(t, "", ShortID(""))
}
