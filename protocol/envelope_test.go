package protocol

import (
	"testing"
)

var (
	aliceKey = Key{'a', 'l', 'i', 'c', 'e', 15: 1}
	bobKey   = Key{'b', 'o', 'b', 15: 2}
)

func TestTicketRoundTrip(t *testing.T) {
	session, err := NewSessionKey()
	if err != nil {
		t.Fatal(err)
	}
	alice := MustIdentity("alice")
	ticket, err := SealTicket(bobKey, session, alice)
	if err != nil {
		t.Fatal(err)
	}
	if Key(ticket[0]) == session || Identity(ticket[1]) == alice {
		t.Fatal("Ticket leaks its content")
	}
	gotKey, gotID, err := OpenTicket(bobKey, ticket)
	if err != nil {
		t.Fatal(err)
	}
	if gotKey != session || gotID != alice {
		t.Fatal("Unexpected ticket content")
	}
}

func TestTicketWrongKey(t *testing.T) {
	for i := 0; i < 200; i++ {
		session, err := NewSessionKey()
		if err != nil {
			t.Fatal(err)
		}
		ticket, err := SealTicket(aliceKey, session, MustIdentity("alice"))
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := OpenTicket(bobKey, ticket); err != ErrRejected {
			t.Fatal("Expect ErrRejected, got", err)
		}
	}
}

func TestGarbageTicket(t *testing.T) {
	if _, _, err := OpenTicket(bobKey, Ticket{}); err != ErrRejected {
		t.Fatal("Expect ErrRejected")
	}
}

func TestGrantRoundTrip(t *testing.T) {
	g := &Grant{
		Nonce:      Nonce{9},
		Peer:       MustIdentity("bob"),
		SessionKey: Key{7},
		Ticket:     Ticket{Block{1}, Block{2}},
	}
	sealed, err := SealGrant(aliceKey, g)
	if err != nil {
		t.Fatal(err)
	}
	if sealed[3] == g.Ticket[0] {
		t.Fatal("Expect the ticket blocks to be sealed too")
	}
	got, err := OpenGrant(aliceKey, sealed)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *g {
		t.Fatal("Unexpected grant", got)
	}
	wrong, err := OpenGrant(bobKey, sealed)
	if err != nil {
		t.Fatal(err)
	}
	if wrong.Nonce == g.Nonce {
		t.Fatal("Expect garbage when opening with the wrong key")
	}
}

func TestSealNonce(t *testing.T) {
	n, err := NewNonce()
	if err != nil {
		t.Fatal(err)
	}
	b, err := SealNonce(aliceKey, n)
	if err != nil {
		t.Fatal(err)
	}
	got, err := OpenNonce(aliceKey, b)
	if err != nil {
		t.Fatal(err)
	}
	if got != n {
		t.Fatal("Nonce round trip failed")
	}
}

func TestFreshValues(t *testing.T) {
	k1, _ := NewSessionKey()
	k2, _ := NewSessionKey()
	if k1 == k2 {
		t.Fatal("Expect different session keys")
	}
	n1, _ := NewNonce()
	n2, _ := NewNonce()
	if n1 == n2 {
		t.Fatal("Expect different nonces")
	}
}
