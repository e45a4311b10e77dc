/*
Package speak plays a streamed text-to-speech byte stream through an audio output.

A Player runs one session at a time. Chunks of raw PCM arrive in order through
IngestChunk; whole samples are decoded, collected into segments and scheduled
back-to-back on the output sink. Finish drains the trailing bytes and waits for
the scheduled audio to play out. Cancel stops a session from any goroutine.

Example:

	p, err := speak.NewPlayer(speak.Config{})
	if err != nil {
		log.Fatal(err)
	}
	stream, err := client.StreamHTTP(ctx, "Hello there")
	if err != nil {
		log.Fatal(err)
	}
	defer stream.Close()
	if err := p.Play(ctx, stream); err != nil {
		log.Fatal(err)
	}
*/
package speak
