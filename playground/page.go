package playground

var htmlPage = `<html>
<head>
	<title>RV32I Assembler</title>
</head>
<body style="background-color: #1E1E1E; color: white; font-family: sans-serif;">
	<h1 style="display: inline-block;">RV32I Assembler</h1>
	<button id="assembleButton" style="margin-left: 50px; height: 40px; width: 100px;">ASSEMBLE</button>
	<label style="margin-left: 20px;"><input type="checkbox" id="strictImmediates"/> strict immediates</label>
	<label style="margin-left: 10px;"><input type="checkbox" id="strictAlignment"/> strict alignment</label>
	<br/>
	<textarea id="source" spellcheck="false" style="width: 1000px; height: 300px; font-family: monospace; font-size: 1.1em; background-color: black; color: white; border: 2px solid white;">start:
  addi x1, x0, 5
  beq x1, x0, start</textarea>
	<h2>Output</h2>
	<pre style="width: 980px; padding: 10px; font-size: 1.1em; background-color: black; min-height: 200px; overflow-x: auto; border: 2px solid white;" id="output"></pre>

	<script>
		var socket;

		function connect() {
			socket = new WebSocket("ws://" + window.location.host + "/ws");
			socket.onmessage = function(event) {
				var data = JSON.parse(event.data);
				var out = document.getElementById("output");
				if (data.type == "error") {
					out.textContent = data.message + "\n\n" + (data.context || "");
					return;
				}
				if (data.type == "result") {
					var text = "Addr      | Label | Hex      | Bin                              | Assembly\n";
					data.listing.forEach(function(row) {
						text += "+" + String(row.address).padStart(8, "0") + " | " + row.labels.padEnd(5) + " | " +
							row.hex + " | " + row.bin + " | " + row.assembly + "\n";
					});
					data.warnings.forEach(function(w) {
						text += "\nwarning (line " + (w.range.start.line + 1) + "): " + w.message;
					});
					out.textContent = text;
				}
			};
			// reconnect every 3 seconds
			socket.onclose = function() {
				setTimeout(connect, 3000);
			};
		}
		connect();

		document.getElementById("assembleButton").onclick = function() {
			socket.send(JSON.stringify({
				type: "assemble",
				source: document.getElementById("source").value,
				config: {
					strictImmediates: document.getElementById("strictImmediates").checked,
					strictAlignment: document.getElementById("strictAlignment").checked
				}
			}));
		};
	</script>
</body>
</html>
`
