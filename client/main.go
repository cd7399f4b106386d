package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeJoinRoom    = 101
	MsgTypeLeaveRoom   = 102
	MsgTypeStateIntent = 201
	MsgTypeChat        = 203
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 6+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint32(packet[2:6], uint32(len(data)))
	copy(packet[6:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	addr := flag.String("addr", "localhost:3001", "server address")
	room := flag.String("room", "demo", "room id to join")
	player := flag.String("player", "p1", "durable player id")
	name := flag.String("name", "Sketcher", "display name")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 6 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[6:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	join := map[string]string{"roomId": *room, "playerName": *name, "playerId": *player}
	joinData, _ := json.Marshal(join)
	if err := send(c, MsgTypeJoinRoom, joinData); err != nil {
		log.Println("Write error:", err)
		return
	}
	log.Printf("Joined room %s as %s. Commands: start | pick <word> | done | reroll | yes | no | say <msg> | leave", *room, *name)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}

			var msgID uint16 = MsgTypeStateIntent
			var payload interface{}

			switch {
			case text == "start":
				payload = map[string]interface{}{"type": "start_round"}
			case strings.HasPrefix(text, "pick "):
				payload = map[string]interface{}{"type": "pick_word", "word": strings.TrimPrefix(text, "pick ")}
			case text == "done":
				payload = map[string]interface{}{"type": "finish_drawing", "drawing": "data:image/png;base64,"}
			case text == "reroll":
				payload = map[string]interface{}{"type": "reroll_word"}
			case text == "yes":
				payload = map[string]interface{}{"type": "guess_result", "correct": true}
			case text == "no":
				payload = map[string]interface{}{"type": "guess_result", "correct": false}
			case strings.HasPrefix(text, "say "):
				msgID = MsgTypeChat
				payload = map[string]interface{}{"message": strings.TrimPrefix(text, "say ")}
			case text == "leave":
				msgID = MsgTypeLeaveRoom
				payload = map[string]interface{}{"roomId": *room, "playerId": *player}
			default:
				log.Printf("Unknown command: %s", text)
				continue
			}

			data, _ := json.Marshal(payload)
			if err := send(c, msgID, data); err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s", text)
		}
	}
}
