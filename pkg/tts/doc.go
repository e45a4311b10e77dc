/*
Package tts requests synthesized speech from the Cartesia API as a raw PCM byte stream.

Two transports are supported. StreamHTTP posts the transcript to the bytes
endpoint and reads the response body as it arrives. StreamWebSocket sends the
same request over a WebSocket and decodes the base64 audio chunks it returns.
Both streams satisfy the chunk source contract of package speak:

	client, err := tts.NewClient(tts.Config{APIKey: os.Getenv("CARTESIA_API_KEY")})
	if err != nil {
		log.Fatal(err)
	}
	stream, err := client.Stream(ctx, "Hello there", tts.TransportHTTP)
	if err != nil {
		log.Fatal(err)
	}
	defer stream.Close()
	err = player.Play(ctx, stream)

Requests are not retried.
*/
package tts
