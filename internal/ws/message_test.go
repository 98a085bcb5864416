package ws

import (
	"testing"

	"github.com/coder/websocket"
)

func TestCodecByName(t *testing.T) {
	if CodecByName("msgpack").Name() != "msgpack" {
		t.Error("expected msgpack codec")
	}
	for _, name := range []string{"", "json", "protobuf"} {
		if CodecByName(name).Frame() != websocket.MessageText {
			t.Errorf("%q should fall back to JSON text frames", name)
		}
	}
	if (MsgpackCodec{}).Frame() != websocket.MessageBinary {
		t.Error("msgpack uses binary frames")
	}
}

func TestPointerFrameBothCodecs(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Encode(NewMessage(MsgAimMove, 12, PointerPayload{X: 610.5, Y: 240}))
			if err != nil {
				t.Fatal(err)
			}
			in, err := codec.Decode(data)
			if err != nil {
				t.Fatal(err)
			}
			if in.Type != MsgAimMove || in.Tick != 12 {
				t.Errorf("unexpected header %+v", in)
			}
			var p PointerPayload
			if err := in.Bind(&p); err != nil {
				t.Fatal(err)
			}
			if p.X != 610.5 || p.Y != 240 {
				t.Errorf("unexpected pointer %+v", p)
			}
		})
	}
}

func TestJSONClientFrame(t *testing.T) {
	in, err := JSONCodec{}.Decode([]byte(`{"type":4,"tick":0,"payload":{"clientTime":1700000000000}}`))
	if err != nil {
		t.Fatal(err)
	}
	var ping PingPayload
	if err := in.Bind(&ping); err != nil {
		t.Fatal(err)
	}
	if in.Type != MsgPing || ping.ClientTime != 1700000000000 {
		t.Errorf("unexpected ping %+v / %+v", in, ping)
	}
}

func TestBindWithoutPayload(t *testing.T) {
	in, err := JSONCodec{}.Decode([]byte(`{"type":3}`))
	if err != nil {
		t.Fatal(err)
	}
	var p PointerPayload
	if err := in.Bind(&p); err == nil {
		t.Error("missing payload should fail to bind")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := (JSONCodec{}).Decode([]byte("not json")); err == nil {
		t.Error("expected json error")
	}
	if _, err := (MsgpackCodec{}).Decode([]byte{0xc1}); err == nil {
		t.Error("expected msgpack error")
	}
}

func TestSanitizeNickname(t *testing.T) {
	cases := map[string]string{
		"":                      "Player",
		"a":                     "Player",
		"kicker_9":              "kicker_9",
		"<script>x</script>":    "scriptxscrip",
		"averyveryverylongname": "averyveryver",
		"\xff\xfe":              "Player",
	}
	for in, want := range cases {
		if got := sanitizeNickname(in); got != want {
			t.Errorf("sanitizeNickname(%q) = %q, want %q", in, got, want)
		}
	}
}
